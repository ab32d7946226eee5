package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/yigit/filechat/internal/pkg/logger"
)

// @title FileChat API
// @version 1.0
// @description Channel messages with single file attachments

// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "chatd",
		Short:         "Channel message backend with file attachments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: configs/config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
