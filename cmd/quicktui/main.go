package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "quicktui [command]",
	Short: "quicktui: terminal manager for quickemu virtual machines",
	Long: `quicktui lists the quickemu VMs in your config directory, shows which are running,
and starts, stops or connects to them. Without a command it opens the interactive UI.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/quicktui/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.New(os.Stderr).Error(err)
		os.Exit(1)
	}
}
