package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mensylisir/kubeboot/pkg/config"
)

func TestUpOptionsApply(t *testing.T) {
	cfg := config.Default()
	opts := &UpOptions{MasterAddress: "master:443", SSHUser: "deploy", VerifyChecksum: true}
	opts.apply(cfg)

	assert.Equal(t, "master:443", cfg.MasterAddress)
	assert.Equal(t, "deploy", cfg.SSH.User)
	assert.True(t, cfg.Transfer.VerifyChecksum)
	// untouched fields keep their defaults
	assert.Equal(t, config.Default().KubernetesVersion, cfg.KubernetesVersion)
}

func TestUpOptionsApplyEmptyLeavesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MasterAddress = "from-file.example.com"
	(&UpOptions{}).apply(cfg)

	assert.Equal(t, "from-file.example.com", cfg.MasterAddress)
	assert.False(t, cfg.Transfer.VerifyChecksum)
}
