package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/SebastienMelki/artwall/internal/printer"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "List the media types a search accepts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		resp, err := newClient().MediaTypes(ctx)
		if err != nil {
			return printer.Error("cannot list media types", err.Error(), nil)
		}

		for _, m := range resp.MediaTypes {
			if m == resp.Default {
				printer.Bold("%s", m)
				printer.Faint(" (default)\n")
				continue
			}
			printer.Info("%s\n", m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mediaCmd)
}
