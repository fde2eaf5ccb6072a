package cmd

import (
	"fmt"
	"os"

	"github.com/goliatone/go-authgate/config"
	"github.com/goliatone/go-print"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "Token authentication and authorization gateway",
	Long: `authgate issues signed bearer tokens, resolves them to accounts on every
request and enforces route level access rules in front of the profile API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger = newLogger(cfg.Log.Level, cfg.Log.Format)
		logger.Debugf("configuration loaded: %s", print.MaybePrettyJSON(cfg.Redacted()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to YAML config file (env overrides: AUTHGATE_*)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
