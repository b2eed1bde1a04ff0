package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lostyway/cloud-file-storage/pkg/app"
	"github.com/lostyway/cloud-file-storage/pkg/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the storage gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.NewApp(configPath)

		// SIGINT/SIGTERM 触发优雅退出
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			errCh <- a.Run()
		}()

		select {
		case sig := <-sigCh:
			log.Logger().Info().Str("signal", sig.String()).Msg("shutting down")
			a.Shutdown()

			return nil
		case err := <-errCh:
			a.Shutdown()

			return err
		}
	},
}

// registerServeCommand 注册 serve 命令.
func registerServeCommand() {
	rootCmd.AddCommand(serveCmd)
}
