package commands

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/SebastienMelki/artwall/internal/gallery"
	"github.com/SebastienMelki/artwall/internal/printer"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start rotating the gallery",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "play", (*apiClient).Play)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Stop rotating the gallery and keep it on screen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd, "pause", (*apiClient).Pause)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
}

func runControl(
	cmd *cobra.Command,
	name string,
	call func(*apiClient, context.Context) (*gallery.View, error),
) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	v, err := call(newClient(), ctx)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.Status == http.StatusConflict {
			return printer.Error("cannot "+name+" now", apiErr.Error(), []string{
				"Load a gallery first:\n  galleryctl search <query>",
			})
		}
		return printer.Error(name+" failed", err.Error(), nil)
	}

	printer.Success("gallery %s (%q)\n", v.State, v.Query)
	return nil
}
