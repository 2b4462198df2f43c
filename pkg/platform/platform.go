// Package platform maps the host operating system and CPU architecture to
// the (platform, arch) pair used in Kubernetes release artifact paths.
package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Pair is the detected (platform, architecture) target, derived once per run
// and immutable afterwards.
type Pair struct {
	Platform string // "darwin" or "linux"
	Arch     string // "amd64" or "386"
}

func (p Pair) String() string {
	return p.Platform + "/" + p.Arch
}

// UnsupportedPlatformError reports an operating system outside the supported set.
type UnsupportedPlatformError struct {
	OS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q: only darwin and linux are supported", e.OS)
}

// UnsupportedArchitectureError reports a CPU architecture outside the supported set.
type UnsupportedArchitectureError struct {
	Arch string
}

func (e *UnsupportedArchitectureError) Error() string {
	return fmt.Sprintf("unsupported architecture %q: only amd64 and 386 are supported", e.Arch)
}

// Detect inspects the running host and returns its Pair.
func Detect() (Pair, error) {
	return Normalize(runtime.GOOS, runtime.GOARCH)
}

// Normalize maps raw OS/arch identifiers to a Pair. It accepts both Go
// runtime values ("linux", "amd64") and uname-style values ("Linux",
// "x86_64", "i686").
func Normalize(osName, archName string) (Pair, error) {
	var p Pair

	switch strings.ToLower(osName) {
	case "darwin":
		p.Platform = "darwin"
	case "linux":
		p.Platform = "linux"
	default:
		return Pair{}, &UnsupportedPlatformError{OS: osName}
	}

	switch strings.ToLower(archName) {
	case "amd64", "x86_64":
		p.Arch = "amd64"
	case "386", "i386", "i486", "i586", "i686":
		p.Arch = "386"
	default:
		return Pair{}, &UnsupportedArchitectureError{Arch: archName}
	}

	return p, nil
}
