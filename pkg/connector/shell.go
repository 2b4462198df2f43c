package connector

import "strings"

// ShellEscape single-quotes s for safe interpolation into a shell command
// line executed through a Connector.
func ShellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
