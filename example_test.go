package sceneflow_test

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/sceneflow"
	"github.com/aretw0/sceneflow/pkg/adapters/memory"
	"github.com/aretw0/sceneflow/pkg/domain"
)

func Example() {
	loader := memory.NewLoader([]memory.SceneSpec{
		{Name: "Menu"},
		{Name: "Level1", LoadTime: 20 * time.Millisecond},
	})
	director := sceneflow.New(loader, sceneflow.WithMinDisplay(10*time.Millisecond))
	defer director.Close()

	ctx := context.Background()
	session, err := director.Navigate(ctx, domain.ByName("Level1"), domain.LoadSingle, true)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// Poll the trigger the way a game loop polls input
	for director.Trigger() != nil {
		time.Sleep(time.Millisecond)
	}

	if err := session.Wait(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("active:", loader.ActiveScene().Name)
	// Output: active: Level1
}
