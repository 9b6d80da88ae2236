package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"ConcertHub/logger"
	"ConcertHub/model"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	browseReq  model.BrowseRequest
	outputJSON bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List concerts from the command line",
	Long:  `Fetch recordings from the browse service, group them into concerts and print one page of the listing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := setup()
		defer logger.Sync()

		engine, _, cleanup, err := buildEngine(cfg)
		defer cleanup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		page, err := engine.Browse(ctx, browseReq)
		if err != nil {
			return fmt.Errorf("browse failed: %w", err)
		}

		if outputJSON {
			return printJSON(page)
		}

		if len(page.Results) == 0 {
			fmt.Println("No concerts found")
			return nil
		}
		fmt.Printf("Page %d of %d (%d concerts)\n\n", page.Page, page.TotalPages, page.Total)
		for i, g := range page.Results {
			fmt.Printf("%3d. %s  %s  %s  [%d recordings, %d tracks]\n",
				(page.Page-1)*page.PerPage+i+1,
				g.Date.Format(model.ConcertDateLayout),
				g.Artist,
				venueOrUnknown(g),
				g.TotalRecordings,
				g.TotalTracks)
			fmt.Printf("     key: %s\n", g.ConcertKey)
		}
		return nil
	},
}

func venueOrUnknown(g model.ConcertGroup) string {
	if v := g.VenueName(); v != "" {
		return v
	}
	return model.UnknownVenue
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	f := browseCmd.Flags()
	f.StringVarP(&browseReq.Query, "query", "q", "", "free-text search")
	f.StringVar(&browseReq.DateRange, "date-range", "", "7d, 30d, 90d or 1y")
	f.StringVarP(&browseReq.Artist, "artist", "a", "", "filter by artist")
	f.StringVar(&browseReq.Venue, "venue", "", "filter by venue")
	f.IntVarP(&browseReq.Page, "page", "p", model.DefaultPage, "page number")
	f.IntVarP(&browseReq.PerPage, "per-page", "n", model.DefaultPerPage, "concerts per page (1-100)")
	f.StringVar(&browseReq.SortBy, "sort-by", model.SortByDate, "date, artist or venue")
	f.StringVar(&browseReq.SortOrder, "sort-order", model.SortDesc, "asc or desc")
	f.BoolVar(&browseReq.FilterByConcertDate, "by-concert-date", false, "apply --date-range to the concert date instead of the upload date")
	browseCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(browseCmd)
}
