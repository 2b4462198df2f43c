package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/kubeboot/pkg/config"
	"sigs.k8s.io/yaml"
)

func TestGetUnknownTemplate(t *testing.T) {
	_, err := Get("kubeconfig/nope.tmpl")
	assert.Error(t, err)
}

func TestRenderMissingKeyFails(t *testing.T) {
	_, err := Render("{{ .NotThere }}", struct{}{})
	assert.Error(t, err)
}

func TestRenderKubeconfig(t *testing.T) {
	cfg := config.Default()
	cfg.MasterAddress = "master.example.com:443"

	out, err := RenderKubeconfig(KubeconfigDataFromConfig(cfg))
	require.NoError(t, err)

	assert.Contains(t, out, "server: https://master.example.com:443")
	assert.Contains(t, out, "name: default-cluster")
	assert.Contains(t, out, "current-context: default-system")
	assert.Contains(t, out, "client-certificate: "+cfg.Certs.AdminCert)

	// The rendered document must be well-formed YAML.
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Config", doc["kind"])
}
