package kubeconfig

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/kubeboot/pkg/config"
	"github.com/mensylisir/kubeboot/pkg/connector"
	"github.com/mensylisir/kubeboot/pkg/runner"
)

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

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.MasterAddress = "master.example.com:443"
	cfg.KubeconfigPath = filepath.Join(t.TempDir(), "config")
	return cfg
}

func TestBackupPath(t *testing.T) {
	when := time.Date(2026, 8, 28, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "/home/core/.kube/config.20260828",
		BackupPath("/home/core/.kube/config", when))
}

func TestWriteStepIssuesMutationsInOrder(t *testing.T) {
	cfg := testConfig(t)
	conn := &fakeConnector{}
	step := NewWriteStep(cfg, conn, runner.New(), "/usr/local/bin/kubectl")

	err := step.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, conn.commands, 4)
	assert.Contains(t, conn.commands[0], "config set-cluster 'default-cluster'")
	assert.Contains(t, conn.commands[0], "--server='https://master.example.com:443'")
	assert.Contains(t, conn.commands[1], "config set-credentials 'default-admin'")
	assert.Contains(t, conn.commands[2], "config set-context 'default-system'")
	assert.Contains(t, conn.commands[3], "config use-context 'default-system'")
}

func TestWriteStepFailFast(t *testing.T) {
	cfg := testConfig(t)
	conn := &fakeConnector{err: errors.New("no such file or directory")}
	step := NewWriteStep(cfg, conn, runner.New(), "kubectl")

	err := step.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, conn.commands, 1)
}

func TestWriteStepBacksUpExistingConfig(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.KubeconfigPath, []byte("previous contents"), 0o600))

	step := NewWriteStep(cfg, &fakeConnector{}, runner.New(), "kubectl")
	when := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	step.now = func() time.Time { return when }

	require.NoError(t, step.Run(context.Background()))

	data, err := os.ReadFile(cfg.KubeconfigPath + ".20260828")
	require.NoError(t, err)
	assert.Equal(t, "previous contents", string(data))
}

func TestWriteStepSameDayBackupOverwritten(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.KubeconfigPath, []byte("current"), 0o600))
	require.NoError(t, os.WriteFile(cfg.KubeconfigPath+".20260828", []byte("stale morning backup"), 0o600))

	step := NewWriteStep(cfg, &fakeConnector{}, runner.New(), "kubectl")
	step.now = func() time.Time { return time.Date(2026, 8, 28, 17, 30, 0, 0, time.UTC) }

	require.NoError(t, step.Run(context.Background()))

	data, err := os.ReadFile(cfg.KubeconfigPath + ".20260828")
	require.NoError(t, err)
	assert.Equal(t, "current", string(data))
}

func TestWriteStepSkipsBackupWhenNoConfig(t *testing.T) {
	cfg := testConfig(t)
	step := NewWriteStep(cfg, &fakeConnector{}, runner.New(), "kubectl")
	step.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, step.Run(context.Background()))

	_, err := os.Stat(cfg.KubeconfigPath + ".20260828")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteStepPrecheckNeverSkips(t *testing.T) {
	step := NewWriteStep(testConfig(t), &fakeConnector{}, runner.New(), "kubectl")
	done, err := step.Precheck(context.Background())
	require.NoError(t, err)
	assert.False(t, done)
}

func TestVerifyStepStreamsNodeList(t *testing.T) {
	cfg := testConfig(t)
	conn := &fakeConnector{stdout: []byte("NAME    STATUS   AGE\nnode-1  Ready    4d\n")}

	var out bytes.Buffer
	step := NewVerifyStep(cfg, conn, runner.New(), "kubectl", &out)

	err := step.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, conn.commands, 1)
	assert.Contains(t, conn.commands[0], "get nodes")
	assert.Contains(t, out.String(), "node-1")
}

func TestVerifyStepPropagatesFailure(t *testing.T) {
	cfg := testConfig(t)
	conn := &fakeConnector{err: &connector.CommandError{Cmd: "kubectl get nodes", ExitCode: 1}}

	step := NewVerifyStep(cfg, conn, runner.New(), "kubectl", &bytes.Buffer{})
	err := step.Run(context.Background())
	require.Error(t, err)

	var cmdErr *connector.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitCode)
}
