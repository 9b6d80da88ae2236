package cmd

import (
	"ConcertHub/logger"
	"ConcertHub/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the concert aggregation HTTP service",
	Long:  `Start the HTTP service that lists concerts grouped from archive recordings and serves concert details.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	cfg := setup()
	defer logger.Sync()

	engine, metadata, cleanup, err := buildEngine(cfg)
	defer cleanup()
	if err != nil {
		logger.Error("failed to start", logger.ErrorField(err))
		return err
	}

	return server.Start(":"+cfg.ServerPort, server.NewRouter(engine, metadata))
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
