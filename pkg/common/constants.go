package common

import "time"

// Component and tool names used across the pipeline.
const (
	KubectlBinaryName = "kubectl"
	CurlBinaryName    = "curl"
	WgetBinaryName    = "wget"
)

// Default bootstrap parameters. Every value here is overridable through the
// config file, KUBEBOOT_* environment variables, or command-line flags.
const (
	DefaultKubernetesVersion = "v1.28.0"
	DefaultReleaseBaseURL    = "https://storage.googleapis.com/kubernetes-release/release"
	DefaultInstallDir        = "/usr/local/bin"
	DefaultRemoteUser        = "core"
	DefaultSSHPort           = 22
	DefaultRemoteCertDir     = "/etc/kubernetes/ssl"

	DefaultClusterName = "default-cluster"
	DefaultUserName    = "default-admin"
	DefaultContextName = "default-system"

	DefaultCACertFileName    = "ca.pem"
	DefaultAdminCertFileName = "admin.pem"
	DefaultAdminKeyFileName  = "admin-key.pem"
)

// Home-relative locations. Resolved against the invoking user's home directory
// at config load time.
const (
	KubebootRootDirName   = ".kubeboot"
	KubeDirName           = ".kube"
	KubeconfigFileName    = "config"
	LocalCertDirName      = "ssl"
	DefaultConfigFileName = "config.yaml"
)

// Process exit codes. Stage-specific codes let scripted callers distinguish
// failure causes; failures of invoked programs propagate their own codes.
const (
	ExitSuccess             = 0
	ExitGeneralFailure      = 1
	ExitUnsupportedPlatform = 1
	ExitUnsupportedArch     = 2
	ExitNoTransferTool      = 3
	ExitNoCopyTool          = 4
)

// Timeouts for blocking operations.
const (
	DefaultDownloadTimeout = 5 * time.Minute
	DefaultSSHTimeout      = 30 * time.Second
	DefaultKubectlTimeout  = 2 * time.Minute
)

// BackupDateFormat is the suffix layout for kubeconfig backups, e.g.
// config.20260828. A second run on the same day overwrites the same file.
const BackupDateFormat = "20060102"
