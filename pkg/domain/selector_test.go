package domain_test

import (
	"testing"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestSelector_Validate(t *testing.T) {
	idx := 2
	neg := -1

	tests := []struct {
		name    string
		sel     domain.Selector
		wantErr bool
	}{
		{"index", domain.ByIndex(0), false},
		{"name", domain.ByName("Level1"), false},
		{"both", domain.Selector{Index: &idx, Name: "Level1"}, true},
		{"neither", domain.Selector{}, true},
		{"negative index", domain.Selector{Index: &neg}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidSelector)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelector_Matches(t *testing.T) {
	scene := domain.Scene{Index: 3, Name: "Forest"}

	assert.True(t, domain.ByIndex(3).Matches(scene))
	assert.True(t, domain.ByName("Forest").Matches(scene))
	assert.False(t, domain.ByIndex(1).Matches(scene))
	assert.False(t, domain.ByName("Cave").Matches(scene))
}

func TestParseLoadMode(t *testing.T) {
	mode, err := domain.ParseLoadMode("")
	assert.NoError(t, err)
	assert.Equal(t, domain.LoadSingle, mode)

	mode, err = domain.ParseLoadMode("additive")
	assert.NoError(t, err)
	assert.Equal(t, domain.LoadAdditive, mode)

	_, err = domain.ParseLoadMode("merge")
	assert.Error(t, err)
}
