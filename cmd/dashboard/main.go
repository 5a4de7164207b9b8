package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"route-dashboard/internal/config"
	"route-dashboard/internal/platform/logging"
)

var (
	verbose bool
	envFile string
	mock    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Route optimization dashboard",
	Long: `dashboard submits route optimization requests to an external computation
service, follows its progress notifications over a websocket and presents the
resulting routes.

Configuration is read from the environment (and an optional .env file):
  OPTIMIZER_URL   endpoint accepting optimization requests
  PROGRESS_URL    websocket endpoint pushing progress notifications
  PROGRESS_EVENT  event name of progress notifications (default ReceiveProgress)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return err
		}

		loaded, err := config.LoadEnvFile(envFile)
		if err != nil {
			return err
		}
		if !loaded {
			logger.Debug("no env file found, using environment variables", zap.String("path", envFile))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path of the .env file to load")
	rootCmd.PersistentFlags().BoolVar(&mock, "mock", false, "use the in-process mock optimizer instead of OPTIMIZER_URL")

	rootCmd.AddCommand(serveCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
