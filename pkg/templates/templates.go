// Package templates renders embedded configuration templates without
// invoking kubectl, for hosts that prepare their kubeconfig offline.
package templates

import (
	"bytes"
	"embed"
	"io/fs"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

//go:embed kubeconfig/*.tmpl
var embeddedTemplates embed.FS

// Get retrieves the content of an embedded template file by its relative
// path, e.g. "kubeconfig/kubeconfig.yaml.tmpl".
func Get(name string) (string, error) {
	content, err := fs.ReadFile(embeddedTemplates, name)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read embedded template %q", name)
	}
	return string(content), nil
}

// Render executes a template string against data. Missing keys are errors so
// a half-filled kubeconfig never reaches disk silently.
func Render(tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New("template").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(tmplStr)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}
	return buf.String(), nil
}
