// Package config holds the bootstrap configuration. Values resolve in
// ascending precedence: built-in defaults, YAML config file, KUBEBOOT_*
// environment variables, command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/mensylisir/kubeboot/pkg/common"
)

// SSHSpec carries the authentication material for the certificate copy from
// the master. At least one of Password, PrivateKey, or PrivateKeyPath must be
// set for the copy stage to be considered available.
type SSHSpec struct {
	User           string `json:"user,omitempty"`
	Port           int    `json:"port,omitempty"`
	Password       string `json:"-"`
	PrivateKey     string `json:"-"`
	PrivateKeyPath string `json:"privateKeyPath,omitempty"`
}

// CertPaths are the local certificate file locations after retrieval.
type CertPaths struct {
	CACert    string `json:"caCert,omitempty"`
	AdminCert string `json:"adminCert,omitempty"`
	AdminKey  string `json:"adminKey,omitempty"`
}

// TransferSpec controls how the kubectl binary is fetched.
type TransferSpec struct {
	// DisableNative forces the use of an external curl/wget instead of the
	// built-in HTTP client, e.g. when system proxy wrappers must be honored.
	DisableNative  bool `json:"disableNative,omitempty"`
	VerifyChecksum bool `json:"verifyChecksum,omitempty"`
}

// Config is the full bootstrap configuration, passed explicitly into the
// pipeline entry point.
type Config struct {
	KubernetesVersion string `json:"kubernetesVersion,omitempty"`
	ReleaseBaseURL    string `json:"releaseBaseURL,omitempty"`
	InstallDir        string `json:"installDir,omitempty"`

	// MasterAddress is host[:port] of the API server.
	MasterAddress string  `json:"masterAddress,omitempty"`
	SSH           SSHSpec `json:"ssh,omitempty"`

	RemoteCertDir string    `json:"remoteCertDir,omitempty"`
	LocalCertDir  string    `json:"localCertDir,omitempty"`
	Certs         CertPaths `json:"certs,omitempty"`

	KubeconfigPath string `json:"kubeconfigPath,omitempty"`
	ClusterName    string `json:"clusterName,omitempty"`
	UserName       string `json:"userName,omitempty"`
	ContextName    string `json:"contextName,omitempty"`

	Transfer TransferSpec `json:"transfer,omitempty"`
}

// Default returns a Config carrying the built-in defaults, with
// home-relative paths resolved against the invoking user's home directory.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	kubeDir := filepath.Join(home, common.KubeDirName)
	certDir := filepath.Join(kubeDir, common.LocalCertDirName)

	return &Config{
		KubernetesVersion: common.DefaultKubernetesVersion,
		ReleaseBaseURL:    common.DefaultReleaseBaseURL,
		InstallDir:        common.DefaultInstallDir,
		SSH: SSHSpec{
			User: common.DefaultRemoteUser,
			Port: common.DefaultSSHPort,
		},
		RemoteCertDir: common.DefaultRemoteCertDir,
		LocalCertDir:  certDir,
		Certs: CertPaths{
			CACert:    filepath.Join(certDir, common.DefaultCACertFileName),
			AdminCert: filepath.Join(certDir, common.DefaultAdminCertFileName),
			AdminKey:  filepath.Join(certDir, common.DefaultAdminKeyFileName),
		},
		KubeconfigPath: filepath.Join(kubeDir, common.KubeconfigFileName),
		ClusterName:    common.DefaultClusterName,
		UserName:       common.DefaultUserName,
		ContextName:    common.DefaultContextName,
	}
}

// DefaultConfigFilePath returns ~/.kubeboot/config.yaml.
func DefaultConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(common.KubebootRootDirName, common.DefaultConfigFileName)
	}
	return filepath.Join(home, common.KubebootRootDirName, common.DefaultConfigFileName)
}

// Load builds the effective Config from defaults, an optional YAML file, and
// the process environment. Flag overrides are applied by the command layer
// afterwards. A missing file at the default location is not an error; an
// explicitly given path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilePath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	default:
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// applyEnv overlays KUBEBOOT_* environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set("KUBEBOOT_KUBERNETES_VERSION", &c.KubernetesVersion)
	set("KUBEBOOT_RELEASE_BASE_URL", &c.ReleaseBaseURL)
	set("KUBEBOOT_INSTALL_DIR", &c.InstallDir)
	set("KUBEBOOT_MASTER_ADDRESS", &c.MasterAddress)
	set("KUBEBOOT_SSH_USER", &c.SSH.User)
	set("KUBEBOOT_SSH_PASSWORD", &c.SSH.Password)
	set("KUBEBOOT_SSH_KEY_PATH", &c.SSH.PrivateKeyPath)
	set("KUBEBOOT_REMOTE_CERT_DIR", &c.RemoteCertDir)
	set("KUBEBOOT_LOCAL_CERT_DIR", &c.LocalCertDir)
	set("KUBEBOOT_KUBECONFIG", &c.KubeconfigPath)
}

// Validate checks the fields every pipeline stage depends on.
func (c *Config) Validate() error {
	if c.MasterAddress == "" {
		return errors.New("master address is required")
	}
	if err := ValidateReleaseVersion(c.KubernetesVersion); err != nil {
		return err
	}
	if c.ReleaseBaseURL == "" {
		return errors.New("release base URL cannot be empty")
	}
	if c.InstallDir == "" {
		return errors.New("install directory cannot be empty")
	}
	return nil
}

// ValidateReleaseVersion rejects release identifiers that are not plausible
// version tags. Path separators and parent references are refused outright
// since the release string is interpolated into the download URL.
func ValidateReleaseVersion(version string) error {
	if version == "" {
		return errors.New("kubernetes version is required")
	}
	if strings.ContainsAny(version, "/\\") || strings.Contains(version, "..") {
		return errors.Errorf("kubernetes version %q contains path characters", version)
	}
	if _, err := semver.NewVersion(strings.TrimPrefix(version, "v")); err != nil {
		return errors.Wrapf(err, "kubernetes version %q is not a valid version tag", version)
	}
	return nil
}

// MasterHostname returns the host portion of the master address: everything
// before the first colon, or the address unchanged when it has no port.
func (c *Config) MasterHostname() string {
	if i := strings.Index(c.MasterAddress, ":"); i >= 0 {
		return c.MasterAddress[:i]
	}
	return c.MasterAddress
}

// HasCopyCredentials reports whether any SSH authentication material is
// configured. The certificate stage refuses to start without it.
func (c *Config) HasCopyCredentials() bool {
	return c.SSH.Password != "" || c.SSH.PrivateKey != "" || c.SSH.PrivateKeyPath != ""
}
