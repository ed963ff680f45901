package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/audiovault/pkg/app"
	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the http server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		defer func() { _ = log.Close() }()

		a, err := app.NewApp(ctx, configs.GetConfig())
		if err != nil {
			return err
		}

		return a.Run(ctx)
	},
}

// registerServeCommands 注册服务启动命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
