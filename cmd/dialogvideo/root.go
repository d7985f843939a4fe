package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ivlev/dialogvideo/internal/system"
)

func newRootCommand() *cobra.Command {
	var projectFlag string
	var scriptFlag string
	var logLevel string
	var logFormat string

	ctx := newCommandContext(&projectFlag, &scriptFlag)

	rootCmd := &cobra.Command{
		Use:           "dialogvideo",
		Short:         "Render two-character dialogue explainer videos",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), logLevel, logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			ctx.logger = logger
			system.InitResourceLimits()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", ".", "Project directory")
	rootCmd.PersistentFlags().StringVarP(&scriptFlag, "script", "s", "", "Script file (default: script.yaml or the newest file in scripts/)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newSubtitlesCommand(ctx))
	rootCmd.AddCommand(newVoicesCommand(ctx))
	rootCmd.AddCommand(newAssetsCommand(ctx))

	return rootCmd
}
