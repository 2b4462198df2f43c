package templates

import "github.com/mensylisir/kubeboot/pkg/config"

// KubeconfigData is the parameter set for the kubeconfig template.
type KubeconfigData struct {
	ClusterName string
	UserName    string
	ContextName string
	Server      string
	CACert      string
	AdminCert   string
	AdminKey    string
}

// KubeconfigDataFromConfig maps the bootstrap configuration onto template
// parameters.
func KubeconfigDataFromConfig(cfg *config.Config) KubeconfigData {
	return KubeconfigData{
		ClusterName: cfg.ClusterName,
		UserName:    cfg.UserName,
		ContextName: cfg.ContextName,
		Server:      "https://" + cfg.MasterAddress,
		CACert:      cfg.Certs.CACert,
		AdminCert:   cfg.Certs.AdminCert,
		AdminKey:    cfg.Certs.AdminKey,
	}
}

// RenderKubeconfig produces a complete kubeconfig document from the embedded
// template, equivalent in shape to what the kubectl config mutations build.
func RenderKubeconfig(data KubeconfigData) (string, error) {
	tmpl, err := Get("kubeconfig/kubeconfig.yaml.tmpl")
	if err != nil {
		return "", err
	}
	return Render(tmpl, data)
}
