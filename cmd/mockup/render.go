package main

import (
	"fmt"
	"os"

	"github.com/phambaophuc/device-mockup/internal/devices"
	"github.com/phambaophuc/device-mockup/internal/services/assets"
	"github.com/phambaophuc/device-mockup/internal/services/processor"
	"github.com/spf13/cobra"
)

var (
	renderModel   string
	renderColor   string
	renderBezels  string
	renderBaseURL string
)

var renderCmd = &cobra.Command{
	Use:   "render <screenshot> <output.png>",
	Short: "Composite a screenshot into a device bezel",
	Long: `Composite a screenshot into a device bezel and write the PNG.

Bezels are read from --bezels, or fetched from --base-url when set.`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderModel, "model", "m", "", "Device model key (default: catalog default)")
	renderCmd.Flags().StringVarP(&renderColor, "color", "c", "", "Bezel color (default: model default)")
	renderCmd.Flags().StringVar(&renderBezels, "bezels", "./assets/bezels", "Directory holding bezel and mask PNGs")
	renderCmd.Flags().StringVar(&renderBaseURL, "base-url", "", "Fetch bezels from this URL instead of --bezels")
}

func runRender(cmd *cobra.Command, args []string) error {
	catalog, err := devices.LoadFile(catalogPath)
	if err != nil {
		return err
	}

	var store assets.Store = assets.NewDirStore(renderBezels)
	if renderBaseURL != "" {
		store = assets.NewHTTPStore(renderBaseURL)
	}

	screenshot, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read screenshot: %w", err)
	}

	compositor := processor.NewCompositor(catalog, store, logger)
	mockup, err := compositor.Composite(cmd.Context(), screenshot, renderModel, renderColor)
	if err != nil {
		return fmt.Errorf("failed to render mockup: %w", err)
	}

	if err := os.WriteFile(args[1], mockup.PNG, 0o644); err != nil {
		return fmt.Errorf("failed to write mockup: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s) %dx%d\n", args[1], mockup.Model, mockup.Color, mockup.Width, mockup.Height)
	return nil
}
