// Package cmd implements the catalogctl command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agonsep/21stCentury/internal/cli/config"
	"github.com/agonsep/21stCentury/internal/cli/output"
	"github.com/agonsep/21stCentury/pkg/client"
)

// app carries state shared by all subcommands of one invocation
type app struct {
	cfgFile string
	cfg     *config.Config
}

// client builds an API client from the loaded configuration
func (a *app) client() *client.Client {
	return client.New(a.cfg.Server.URL, client.WithToken(a.cfg.Auth.Token))
}

// save persists the configuration to --config when given, else to $HOME
func (a *app) save() error {
	if a.cfgFile != "" {
		return a.cfg.SaveTo(a.cfgFile)
	}
	return a.cfg.Save()
}

// NewRootCommand builds the catalogctl command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Command-line client for the EV charger catalog",
		Long: `A command-line interface for the EV charger catalog API. Browse products,
manage users and inspect saved infrastructure maps. Mutating commands require
an admin token obtained with "catalogctl login".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfgFile != "" {
				viper.SetConfigFile(a.cfgFile)
			}
			var err error
			a.cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.catalogctl/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "catalog API base URL")
	rootCmd.PersistentFlags().String("token", "", "admin token for authentication")
	output.AddFormatFlag(rootCmd)

	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("auth.token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.AddCommand(
		newHealthCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newUsersCmd(a),
		newProductsCmd(a),
		newMapsCmd(a),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
