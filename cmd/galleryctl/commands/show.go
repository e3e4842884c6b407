package commands

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SebastienMelki/artwall/internal/gallery"
	"github.com/SebastienMelki/artwall/internal/printer"
)

var (
	showWatch    bool
	showInterval time.Duration
	showOutput   string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show what is on the wall",
	Long: `Show the gallery state, the artwork in every slot and the last alert.

Output Formats:
  default - Human-readable slot listing
  json    - The raw gallery view

Examples:
  galleryctl show
  galleryctl show --watch --interval 1s`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVarP(&showWatch, "watch", "w", false, "refresh until interrupted")
	showCmd.Flags().DurationVarP(&showInterval, "interval", "i", 2*time.Second, "refresh interval with --watch")
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "default", "output format (default or json)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if showOutput != "default" && showOutput != "json" {
		return printer.Error("invalid output format", "Unknown format: "+showOutput, []string{"Valid formats: default, json"})
	}

	client := newClient()
	ctx := cmd.Context()

	for {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		v, err := client.Gallery(reqCtx)
		cancel()
		if err != nil {
			return printer.Error("cannot read gallery", err.Error(), nil)
		}

		if showOutput == "json" {
			if err := json.NewEncoder(os.Stdout).Encode(v); err != nil {
				return err
			}
		} else {
			printView(v)
		}

		if !showWatch {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(showInterval):
		}
	}
}

func printView(v *gallery.View) {
	printer.Bold("%s", v.State)
	if v.Query != "" {
		printer.Info("  %q", v.Query)
	}
	if v.PendingQuery != "" {
		printer.Faint("  (searching %q)", v.PendingQuery)
	}
	printer.Faint("  pool=%d\n", v.PoolSize)

	if v.State == gallery.StatePopulating {
		printer.Step("populating %3.0f%%\n", v.Progress*100)
	}

	for i, slot := range v.Slots {
		if !slot.Occupied {
			printer.Faint("  [%02d] -\n", i+1)
			continue
		}
		printer.Info("  [%02d] %s\n", i+1, slot.ID)
	}

	if v.Alert != nil {
		printer.Warning("last attempt to get images failed for %q: %s\n", v.Alert.Query, v.Alert.Message)
	}
	if !v.CanRotate {
		printer.Faint("rotation controls disabled\n")
	}
}
