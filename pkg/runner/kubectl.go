package runner

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/mensylisir/kubeboot/pkg/common"
	"github.com/mensylisir/kubeboot/pkg/connector"
)

// CommonOptions name the kubectl binary and the kubeconfig it operates on.
// An empty BinaryPath falls back to "kubectl" from PATH; an empty
// KubeconfigPath lets kubectl use its own default resolution.
type CommonOptions struct {
	BinaryPath     string
	KubeconfigPath string
}

func (o CommonOptions) base() []string {
	bin := o.BinaryPath
	if bin == "" {
		bin = common.KubectlBinaryName
	}
	args := []string{connector.ShellEscape(bin)}
	if o.KubeconfigPath != "" {
		args = append(args, "--kubeconfig", connector.ShellEscape(o.KubeconfigPath))
	}
	return args
}

// SetClusterOptions registers a cluster entry.
// Corresponds to `kubectl config set-cluster NAME --server=... --certificate-authority=...`.
type SetClusterOptions struct {
	CommonOptions
	ClusterName          string
	Server               string
	CertificateAuthority string
}

func (r *Runner) ConfigSetCluster(ctx context.Context, conn connector.Connector, opts SetClusterOptions) error {
	if opts.ClusterName == "" {
		return errors.New("cluster name is required for config set-cluster")
	}
	if opts.Server == "" {
		return errors.New("server is required for config set-cluster")
	}

	args := opts.base()
	args = append(args, "config", "set-cluster", connector.ShellEscape(opts.ClusterName),
		"--server="+connector.ShellEscape(opts.Server))
	if opts.CertificateAuthority != "" {
		args = append(args, "--certificate-authority="+connector.ShellEscape(opts.CertificateAuthority))
	}
	return r.run(ctx, conn, strings.Join(args, " "))
}

// SetCredentialsOptions registers a credential entry with client certificate
// and key. Corresponds to `kubectl config set-credentials`.
type SetCredentialsOptions struct {
	CommonOptions
	UserName          string
	ClientCertificate string
	ClientKey         string
}

func (r *Runner) ConfigSetCredentials(ctx context.Context, conn connector.Connector, opts SetCredentialsOptions) error {
	if opts.UserName == "" {
		return errors.New("user name is required for config set-credentials")
	}

	args := opts.base()
	args = append(args, "config", "set-credentials", connector.ShellEscape(opts.UserName))
	if opts.ClientCertificate != "" {
		args = append(args, "--client-certificate="+connector.ShellEscape(opts.ClientCertificate))
	}
	if opts.ClientKey != "" {
		args = append(args, "--client-key="+connector.ShellEscape(opts.ClientKey))
	}
	return r.run(ctx, conn, strings.Join(args, " "))
}

// SetContextOptions binds a cluster to a credential under a context name.
// Corresponds to `kubectl config set-context`.
type SetContextOptions struct {
	CommonOptions
	ContextName string
	ClusterName string
	UserName    string
}

func (r *Runner) ConfigSetContext(ctx context.Context, conn connector.Connector, opts SetContextOptions) error {
	if opts.ContextName == "" {
		return errors.New("context name is required for config set-context")
	}

	args := opts.base()
	args = append(args, "config", "set-context", connector.ShellEscape(opts.ContextName))
	if opts.ClusterName != "" {
		args = append(args, "--cluster="+connector.ShellEscape(opts.ClusterName))
	}
	if opts.UserName != "" {
		args = append(args, "--user="+connector.ShellEscape(opts.UserName))
	}
	return r.run(ctx, conn, strings.Join(args, " "))
}

// ConfigUseContext activates a context.
// Corresponds to `kubectl config use-context NAME`.
func (r *Runner) ConfigUseContext(ctx context.Context, conn connector.Connector, opts CommonOptions, contextName string) error {
	if contextName == "" {
		return errors.New("context name is required for config use-context")
	}

	args := opts.base()
	args = append(args, "config", "use-context", connector.ShellEscape(contextName))
	return r.run(ctx, conn, strings.Join(args, " "))
}

// ConfigView returns the current kubectl configuration as rendered by
// `kubectl config view`.
func (r *Runner) ConfigView(ctx context.Context, conn connector.Connector, opts CommonOptions) (string, error) {
	args := opts.base()
	args = append(args, "config", "view")

	cmd := strings.Join(args, " ")
	stdout, stderr, err := conn.Exec(ctx, cmd, &connector.ExecOptions{Timeout: common.DefaultKubectlTimeout})
	if err != nil {
		return "", errors.Wrapf(err, "kubectl config view failed: %s", stderr)
	}
	return string(stdout), nil
}

// ClientVersion returns the client version string reported by the installed
// binary, e.g. "v1.28.0".
func (r *Runner) ClientVersion(ctx context.Context, conn connector.Connector, opts CommonOptions) (string, error) {
	args := opts.base()
	args = append(args, "version", "--client", "-o", "json")

	cmd := strings.Join(args, " ")
	stdout, stderr, err := conn.Exec(ctx, cmd, &connector.ExecOptions{Timeout: common.DefaultKubectlTimeout})
	if err != nil {
		return "", errors.Wrapf(err, "kubectl version failed: %s", stderr)
	}

	version := gjson.GetBytes(stdout, "clientVersion.gitVersion").String()
	if version == "" {
		return "", errors.Errorf("could not parse client version from kubectl output: %s", stdout)
	}
	return version, nil
}

// GetNodes runs `kubectl get nodes` and streams its combined output to out.
// The output is diagnostic and not interpreted; the error carries kubectl's
// exit code for propagation.
func (r *Runner) GetNodes(ctx context.Context, conn connector.Connector, opts CommonOptions, out io.Writer) error {
	args := opts.base()
	args = append(args, "get", "nodes")

	cmd := strings.Join(args, " ")
	_, stderr, err := conn.Exec(ctx, cmd, &connector.ExecOptions{
		Timeout: common.DefaultKubectlTimeout,
		Stream:  out,
	})
	if err != nil {
		return errors.Wrapf(err, "kubectl get nodes failed: %s", stderr)
	}
	return nil
}

func (r *Runner) run(ctx context.Context, conn connector.Connector, cmd string) error {
	stdout, stderr, err := conn.Exec(ctx, cmd, &connector.ExecOptions{Timeout: common.DefaultKubectlTimeout})
	if err != nil {
		return errors.Wrapf(err, "command failed. Stdout: %s, Stderr: %s", stdout, stderr)
	}
	return nil
}
