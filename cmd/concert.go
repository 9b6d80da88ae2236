package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"ConcertHub/logger"
	"ConcertHub/model"

	"github.com/spf13/cobra"
)

var concertJSON bool

var concertCmd = &cobra.Command{
	Use:   "concert <artist|YYYY-MM-DD>",
	Short: "Show one concert and its recordings",
	Args:  cobra.ExactArgs(1),
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

		g, err := engine.Concert(ctx, args[0])
		if err != nil {
			return fmt.Errorf("concert lookup failed: %w", err)
		}

		if concertJSON {
			return printJSON(g)
		}

		fmt.Println(g.Title)
		fmt.Printf("%s  %s  %s\n", g.Date.Format(model.ConcertDateLayout), g.Artist, venueOrUnknown(*g))
		fmt.Println(g.Description)
		fmt.Printf("%d recordings, %d tracks, %d bytes, %d downloads\n\n",
			g.TotalRecordings, g.TotalTracks, g.TotalSize, g.TotalDownloads)
		for _, r := range g.Recordings {
			fmt.Printf("  %s  %s (%d tracks)\n", r.Identifier, r.Title, r.TotalTracks)
		}
		return nil
	},
}

func init() {
	concertCmd.Flags().BoolVar(&concertJSON, "json", false, "print JSON instead of text")
	rootCmd.AddCommand(concertCmd)
}
