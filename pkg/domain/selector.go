package domain

import (
	"fmt"
	"strconv"
)

// Selector identifies a target scene either by build index or by name.
// Exactly one of the two must be set.
type Selector struct {
	Index *int   `json:"index,omitempty" yaml:"index,omitempty"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ByIndex returns a selector targeting the scene at the given build index.
func ByIndex(index int) Selector {
	return Selector{Index: &index}
}

// ByName returns a selector targeting the scene with the given name.
func ByName(name string) Selector {
	return Selector{Name: name}
}

// Validate checks that exactly one of index or name is set.
func (s Selector) Validate() error {
	hasIndex := s.Index != nil
	hasName := s.Name != ""

	switch {
	case hasIndex && hasName:
		return fmt.Errorf("%w: both index and name are set", ErrInvalidSelector)
	case !hasIndex && !hasName:
		return fmt.Errorf("%w: neither index nor name is set", ErrInvalidSelector)
	case hasIndex && *s.Index < 0:
		return fmt.Errorf("%w: negative index %d", ErrInvalidSelector, *s.Index)
	}
	return nil
}

// Matches reports whether the selector identifies the given scene.
func (s Selector) Matches(scene Scene) bool {
	if s.Index != nil {
		return *s.Index == scene.Index
	}
	return s.Name == scene.Name
}

func (s Selector) String() string {
	if s.Index != nil {
		return "#" + strconv.Itoa(*s.Index)
	}
	return s.Name
}

// Scene is the identity of a scene as reported by the host.
type Scene struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// LoadMode controls whether a load replaces the active content or is added to it.
type LoadMode string

const (
	LoadSingle   LoadMode = "single"   // Replace all loaded scenes
	LoadAdditive LoadMode = "additive" // Keep loaded scenes, add the target
)

// ParseLoadMode converts a user supplied string into a LoadMode.
// An empty string defaults to LoadSingle.
func ParseLoadMode(s string) (LoadMode, error) {
	switch LoadMode(s) {
	case "", LoadSingle:
		return LoadSingle, nil
	case LoadAdditive:
		return LoadAdditive, nil
	}
	return "", fmt.Errorf("unknown load mode %q", s)
}
