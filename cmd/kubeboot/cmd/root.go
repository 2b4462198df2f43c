package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mensylisir/kubeboot/pkg/logger"
)

var (
	verboseFlag bool
	cfgFile     string
)

var rootCmd = &cobra.Command{
	Use:   "kubeboot",
	Short: "kubeboot prepares a workstation to talk to a Kubernetes cluster.",
	Long: `kubeboot installs a matching kubectl binary, retrieves the cluster
certificates from the master, writes the kubeconfig, and verifies
connectivity to the API server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logOpts := logger.DefaultOptions()
		logOpts.ColorConsole = true
		if verboseFlag {
			logOpts.ConsoleLevel = logger.DebugLevel
		}
		logger.Init(logOpts)
		return nil
	},
}

// Execute runs the root command. Exit code mapping happens in main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.kubeboot/config.yaml)")
}
