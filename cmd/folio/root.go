package main

import (
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/folio"
)

// cli carries state shared by all subcommands once the root pre-run has
// resolved configuration.
type cli struct {
	cfgFile string
	debug   bool
	v       *viper.Viper
	cfg     folio.SiteConfig
	logger  *log.Logger
}

// newRootCommand creates the folio command tree.
func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "folio",
		Short:         "folio builds and serves a Markdown blog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "Config file (default ./folio.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&c.debug, "debug", "d", false, "Enable debug output")

	noConfig := map[string]bool{"new": true, "version": true, "help": true}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c.logger = folio.NewLogger("folio", c.debug)
		if noConfig[cmd.Name()] {
			return nil
		}
		cfg, err := loadConfig(c.v, c.cfgFile)
		if err != nil {
			return err
		}
		c.cfg = cfg
		if p := configPath(c.v); p != "" {
			c.logger.Debugf("folio: using config %s", p)
		}
		return nil
	}

	rootCmd.AddCommand(
		buildCommand(c),
		serveCommand(c),
		checkCommand(c),
		newCommand(),
		subscribersCommand(c),
		versionCommand(),
	)
	return rootCmd
}

// app constructs a folio.App from the resolved configuration.
func (c *cli) app(views folio.ViewFuncs) (*folio.App, error) {
	return folio.New(c.cfg, views, folio.WithLogger(c.logger))
}
