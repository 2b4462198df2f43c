package runner

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/kubeboot/pkg/connector"
)

// fakeConnector records executed commands and plays back canned responses.
type fakeConnector struct {
	commands []string
	stdout   []byte
	err      error
}

func (f *fakeConnector) Exec(ctx context.Context, cmd string, opts *connector.ExecOptions) ([]byte, []byte, error) {
	f.commands = append(f.commands, cmd)
	if opts != nil && opts.Stream != nil && f.stdout != nil {
		opts.Stream.Write(f.stdout)
	}
	return f.stdout, nil, f.err
}

func (f *fakeConnector) LookPath(ctx context.Context, file string) (string, error) {
	return "/usr/local/bin/" + file, nil
}

func (f *fakeConnector) Close() error { return nil }

func TestConfigSetCluster(t *testing.T) {
	conn := &fakeConnector{}
	r := New()

	err := r.ConfigSetCluster(context.Background(), conn, SetClusterOptions{
		ClusterName:          "default-cluster",
		Server:               "https://master.example.com:443",
		CertificateAuthority: "/home/core/.kube/ssl/ca.pem",
	})
	require.NoError(t, err)
	require.Len(t, conn.commands, 1)
	assert.Equal(t,
		"'kubectl' config set-cluster 'default-cluster' --server='https://master.example.com:443' --certificate-authority='/home/core/.kube/ssl/ca.pem'",
		conn.commands[0])
}

func TestConfigSetClusterRequiresNameAndServer(t *testing.T) {
	r := New()
	err := r.ConfigSetCluster(context.Background(), &fakeConnector{}, SetClusterOptions{Server: "https://x"})
	assert.Error(t, err)
	err = r.ConfigSetCluster(context.Background(), &fakeConnector{}, SetClusterOptions{ClusterName: "c"})
	assert.Error(t, err)
}

func TestConfigSetCredentials(t *testing.T) {
	conn := &fakeConnector{}
	r := New()

	err := r.ConfigSetCredentials(context.Background(), conn, SetCredentialsOptions{
		UserName:          "default-admin",
		ClientCertificate: "/certs/admin.pem",
		ClientKey:         "/certs/admin-key.pem",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"'kubectl' config set-credentials 'default-admin' --client-certificate='/certs/admin.pem' --client-key='/certs/admin-key.pem'",
		conn.commands[0])
}

func TestConfigSetContext(t *testing.T) {
	conn := &fakeConnector{}
	r := New()

	err := r.ConfigSetContext(context.Background(), conn, SetContextOptions{
		ContextName: "default-system",
		ClusterName: "default-cluster",
		UserName:    "default-admin",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"'kubectl' config set-context 'default-system' --cluster='default-cluster' --user='default-admin'",
		conn.commands[0])
}

func TestConfigUseContext(t *testing.T) {
	conn := &fakeConnector{}
	r := New()

	err := r.ConfigUseContext(context.Background(), conn, CommonOptions{}, "default-system")
	require.NoError(t, err)
	assert.Equal(t, "'kubectl' config use-context 'default-system'", conn.commands[0])
}

func TestCommonOptionsApplied(t *testing.T) {
	conn := &fakeConnector{}
	r := New()

	opts := CommonOptions{BinaryPath: "/usr/local/bin/kubectl", KubeconfigPath: "/home/core/.kube/config"}
	err := r.ConfigUseContext(context.Background(), conn, opts, "ctx")
	require.NoError(t, err)
	assert.Equal(t,
		"'/usr/local/bin/kubectl' --kubeconfig '/home/core/.kube/config' config use-context 'ctx'",
		conn.commands[0])
}

func TestClientVersion(t *testing.T) {
	conn := &fakeConnector{stdout: []byte(`{"clientVersion":{"gitVersion":"v1.28.0"}}`)}
	r := New()

	version, err := r.ClientVersion(context.Background(), conn, CommonOptions{})
	require.NoError(t, err)
	assert.Equal(t, "v1.28.0", version)
}

func TestClientVersionUnparseable(t *testing.T) {
	conn := &fakeConnector{stdout: []byte("not json")}
	r := New()

	_, err := r.ClientVersion(context.Background(), conn, CommonOptions{})
	assert.Error(t, err)
}

func TestGetNodesStreams(t *testing.T) {
	conn := &fakeConnector{stdout: []byte("NAME   STATUS   AGE\nnode1  Ready    1d\n")}
	r := New()

	var sink recordingWriter
	err := r.GetNodes(context.Background(), conn, CommonOptions{}, &sink)
	require.NoError(t, err)
	assert.Contains(t, sink.data, "node1")
	assert.Equal(t, "'kubectl' get nodes", conn.commands[0])
}

type recordingWriter struct {
	data string
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.data += string(p)
	return len(p), nil
}

var _ io.Writer = (*recordingWriter)(nil)
