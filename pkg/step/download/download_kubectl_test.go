package download

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/kubeboot/pkg/platform"
)

func TestBuildDownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		version string
		pair    platform.Pair
		want    string
	}{
		{
			name:    "linux amd64",
			base:    "https://storage.googleapis.com/kubernetes-release/release",
			version: "v1.28.0",
			pair:    platform.Pair{Platform: "linux", Arch: "amd64"},
			want:    "https://storage.googleapis.com/kubernetes-release/release/v1.28.0/bin/linux/amd64/kubectl",
		},
		{
			name:    "darwin 386",
			base:    "https://storage.googleapis.com/kubernetes-release/release",
			version: "v1.2.4",
			pair:    platform.Pair{Platform: "darwin", Arch: "386"},
			want:    "https://storage.googleapis.com/kubernetes-release/release/v1.2.4/bin/darwin/386/kubectl",
		},
		{
			name:    "trailing slash on base",
			base:    "https://example.com/release/",
			version: "v1.28.0",
			pair:    platform.Pair{Platform: "linux", Arch: "amd64"},
			want:    "https://example.com/release/v1.28.0/bin/linux/amd64/kubectl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildDownloadURL(tt.base, tt.version, tt.pair))
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "kubectl")
	content := []byte("fake binary content")
	require.NoError(t, os.WriteFile(binPath, content, 0644))

	sum := sha256.Sum256(content)
	sumPath := filepath.Join(dir, "kubectl.sha256")

	t.Run("matching", func(t *testing.T) {
		require.NoError(t, os.WriteFile(sumPath, []byte(hex.EncodeToString(sum[:])+"\n"), 0644))
		assert.NoError(t, verifyChecksum(binPath, sumPath))
	})

	t.Run("with filename field", func(t *testing.T) {
		require.NoError(t, os.WriteFile(sumPath, []byte(hex.EncodeToString(sum[:])+"  kubectl\n"), 0644))
		assert.NoError(t, verifyChecksum(binPath, sumPath))
	})

	t.Run("mismatch", func(t *testing.T) {
		require.NoError(t, os.WriteFile(sumPath, []byte("deadbeef\n"), 0644))
		err := verifyChecksum(binPath, sumPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum mismatch")
	})
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "sub", "dst")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0755))

	require.NoError(t, moveFile(src, dst))

	assert.NoFileExists(t, src)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}
