package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SebastienMelki/artwall/internal/printer"
)

const defaultQuery = "daft punk"

var searchMedia string

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Load a new gallery for a search query",
	Long: `Search the iTunes catalogue and replace the gallery with the artwork found.

The words of the query are joined with spaces. Without a query the search is
for "daft punk". Rotation stops while the search is running; play it again
afterwards.

Examples:
  galleryctl search
  galleryctl search massive attack
  galleryctl search --media movie blade runner`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMedia, "media", "m", "", "media type (see 'galleryctl media'); server default when empty")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		query = defaultQuery
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	printer.Step("searching for %q\n", query)

	resp, err := newClient().Search(ctx, query, searchMedia)
	if err != nil {
		return searchError(query, err)
	}

	printer.Success("gallery loaded: %d distinct artworks for %q (%s)\n", len(resp.Candidates), resp.Query, resp.Media)
	printer.Info("Run 'galleryctl play' to start the rotation.\n")
	return nil
}

func searchError(query string, err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return printer.Error("server unreachable", err.Error(), []string{
			fmt.Sprintf("Check that the server is running at %s", serverURL),
		})
	}

	switch apiErr.Status {
	case http.StatusUnprocessableEntity:
		return printer.Error("not enough artwork", apiErr.Error(), []string{
			"Try a broader query",
			"Search another media type with --media",
		})
	case http.StatusBadGateway:
		return printer.Error(fmt.Sprintf("last attempt to get images failed for %q", query), apiErr.Error(), nil)
	case http.StatusConflict:
		return printer.Error("search superseded", "A newer search started before this one finished.", nil)
	case http.StatusBadRequest:
		return printer.Error("invalid search", apiErr.Error(), []string{"List media types:\n  galleryctl media"})
	default:
		return printer.Error("search failed", apiErr.Error(), nil)
	}
}
