package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mensylisir/kubeboot/pkg/config"
	"github.com/mensylisir/kubeboot/pkg/templates"
)

var renderOutput string

// renderCmd builds the kubeconfig document from the configuration alone,
// without running kubectl. Useful on hosts where the binary is not installed
// yet or the file is provisioned out of band.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the kubeconfig from configuration without invoking kubectl",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cfg.MasterAddress == "" {
			return errors.New("master address is required to render a kubeconfig")
		}

		out, err := templates.RenderKubeconfig(templates.KubeconfigDataFromConfig(cfg))
		if err != nil {
			return err
		}

		if renderOutput == "" || renderOutput == "-" {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		if err := os.WriteFile(renderOutput, []byte(out), 0o600); err != nil {
			return errors.Wrapf(err, "failed to write kubeconfig to %s", renderOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "-", "Write the kubeconfig to this file instead of stdout")
}
