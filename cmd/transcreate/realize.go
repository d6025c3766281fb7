package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/transcreate/internal/config"
	"github.com/dusk-indust/transcreate/internal/logging"
	"github.com/dusk-indust/transcreate/internal/plan"
	"github.com/dusk-indust/transcreate/internal/realization"
)

func runRealize(args []string) error {
	var img, planPath, output, configDir string
	var verbose bool

	fs := flag.NewFlagSet("realize", flag.ContinueOnError)
	fs.StringVar(&img, "img", "", "path to the input image")
	fs.StringVar(&planPath, "plan", "", "path to the Edit Plan JSON")
	fs.StringVar(&output, "output", "", "path to save the generated image")
	fs.StringVar(&configDir, "config", ".", "directory holding transcreate.yml")
	fs.BoolVar(&verbose, "verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if img == "" || planPath == "" || output == "" {
		return fmt.Errorf("usage: transcreate realize -img in.png -plan edit_plan.json -output out.png")
	}

	if err := requireFile(img, "input image"); err != nil {
		return err
	}
	if err := requireFile(planPath, "Edit Plan file"); err != nil {
		return err
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	logger := logging.New(verbose || cfg.Verbose)
	defer logger.Sync()

	v, err := plan.LoadFile(plan.KindEdit, planPath)
	if err != nil {
		return fmt.Errorf("realization failed: %w", err)
	}
	editPlan := v.(plan.EditPlan)

	fmt.Printf("Generating image based on plan: %s\n", planPath)
	generated, err := realization.NewEngine(logger).Generate(context.Background(), editPlan, img)
	if err != nil {
		return fmt.Errorf("realization failed: %w", err)
	}
	fmt.Printf("Success! Image generated at: %s\n", generated)

	if err := realization.WriteMockOutput(output); err != nil {
		return err
	}
	fmt.Printf("Saved result to: %s\n", output)
	return nil
}

func requireFile(path, what string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s not found at %s", what, path)
		}
		return err
	}
	return nil
}
