package main

import (
	"strings"
	"sync"

	"github.com/jgivc/rsrequest/internal/app"
	"github.com/jgivc/rsrequest/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type commandContext struct {
	fs         afero.Fs
	configFlag *string

	appOnce sync.Once
	app     *app.App
	appErr  error
}

func newRootCommand() *cobra.Command {
	return newRootCommandWithFS(afero.NewOsFs())
}

func newRootCommandWithFS(fs afero.Fs) *cobra.Command {
	var configFlag string

	ctx := &commandContext{fs: fs, configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "rsrequest",
		Short:         "Inspect download requests, cookies and release filenames",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newCookiesCommand(ctx))
	rootCmd.AddCommand(newFilenameCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))

	return rootCmd
}

func (c *commandContext) ensureApp(cmd *cobra.Command) (*app.App, error) {
	c.appOnce.Do(func() {
		if err := config.LoadEnv(); err != nil {
			c.appErr = err
			return
		}

		cfg, err := config.Load(c.fs, strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.appErr = err
			return
		}

		log, err := app.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
		if err != nil {
			c.appErr = err
			return
		}

		c.app, c.appErr = app.NewWithFS(c.fs, cfg, log)
	})

	return c.app, c.appErr
}
