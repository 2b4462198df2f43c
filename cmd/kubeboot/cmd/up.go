package cmd

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/mensylisir/kubeboot/pkg/config"
	"github.com/mensylisir/kubeboot/pkg/logger"
	"github.com/mensylisir/kubeboot/pkg/pipeline"
)

// UpOptions holds the flag overrides for the up command. Flags win over the
// config file and environment.
type UpOptions struct {
	MasterAddress     string
	KubernetesVersion string
	InstallDir        string
	SSHUser           string
	SSHKeyPath        string
	KubeconfigPath    string
	VerifyChecksum    bool
}

var upOptions = &UpOptions{}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Run the full bootstrap: download kubectl, fetch certs, write kubeconfig, verify",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(figure.NewFigure("kubeboot", "", true).String())

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		upOptions.apply(cfg)

		p, err := pipeline.New(cfg, os.Stdout)
		if err != nil {
			return err
		}

		log := logger.Get()
		log.Infof("Starting bootstrap run %s against %s", p.RunID(), cfg.MasterAddress)

		if _, err := p.Run(cmd.Context()); err != nil {
			return err
		}
		return nil
	},
}

func (o *UpOptions) apply(cfg *config.Config) {
	if o.MasterAddress != "" {
		cfg.MasterAddress = o.MasterAddress
	}
	if o.KubernetesVersion != "" {
		cfg.KubernetesVersion = o.KubernetesVersion
	}
	if o.InstallDir != "" {
		cfg.InstallDir = o.InstallDir
	}
	if o.SSHUser != "" {
		cfg.SSH.User = o.SSHUser
	}
	if o.SSHKeyPath != "" {
		cfg.SSH.PrivateKeyPath = o.SSHKeyPath
	}
	if o.KubeconfigPath != "" {
		cfg.KubeconfigPath = o.KubeconfigPath
	}
	if o.VerifyChecksum {
		cfg.Transfer.VerifyChecksum = true
	}
}

func init() {
	rootCmd.AddCommand(upCmd)

	upCmd.Flags().StringVarP(&upOptions.MasterAddress, "master", "m", "", "Master address as host[:port] (required unless set in config)")
	upCmd.Flags().StringVar(&upOptions.KubernetesVersion, "kubernetes-version", "", "Kubernetes release to install kubectl for")
	upCmd.Flags().StringVar(&upOptions.InstallDir, "install-dir", "", "Directory to install the kubectl binary into")
	upCmd.Flags().StringVar(&upOptions.SSHUser, "ssh-user", "", "User for the certificate copy from the master")
	upCmd.Flags().StringVarP(&upOptions.SSHKeyPath, "ssh-key", "i", "", "Private key for the certificate copy")
	upCmd.Flags().StringVar(&upOptions.KubeconfigPath, "kubeconfig", "", "Path of the kubeconfig to write")
	upCmd.Flags().BoolVar(&upOptions.VerifyChecksum, "verify-checksum", false, "Verify the SHA-256 checksum of the downloaded kubectl binary")
}
