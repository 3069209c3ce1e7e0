package main

import (
	"log/slog"
	"os"

	"github.com/dgallion1/intelsheet/internal/app"
	"github.com/dgallion1/intelsheet/internal/config"
	"github.com/spf13/cobra"
)

// cli carries what every subcommand needs once the root has run.
type cli struct {
	cfg     config.Config
	log     *slog.Logger
	dataDir string
	verbose bool

	// newApp builds the model-backed app; tests swap it.
	newApp func(config.Config, *slog.Logger) (*app.App, error)
}

func newRootCmd() *cobra.Command {
	return (&cli{newApp: app.New}).command()
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "intelctl",
		Short:         "Competitive intel checklists from a language model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.dataDir != "" {
				if err := os.Setenv("DATA_DIR", c.dataDir); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg

			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			c.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "directory for schema, templates and outputs (overrides DATA_DIR)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log model calls")

	root.AddCommand(
		c.schemaCmd(),
		c.fieldsCmd(),
		c.fetchCmd(),
		c.exportCmd(),
		c.styleCmd(),
		c.compareCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) modelApp() (*app.App, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	return c.newApp(c.cfg, c.log)
}
