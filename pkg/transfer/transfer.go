// Package transfer selects and drives the tool used to download release
// artifacts. The built-in HTTP client is preferred; curl and wget are
// fallbacks for environments where the native client is disabled, e.g. to
// honor system-level proxy wrappers.
package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/mensylisir/kubeboot/pkg/common"
	"github.com/mensylisir/kubeboot/pkg/connector"
)

// ErrNoTransferTool means no download capability is available; the fetch
// stage maps it to its dedicated exit code before any download attempt.
var ErrNoTransferTool = errors.New("no transfer tool available: the native HTTP client is disabled and neither curl nor wget is on PATH")

// Tool downloads a URL into a local file.
type Tool interface {
	Name() string
	Fetch(ctx context.Context, url, destPath string) error
}

// Select returns the preferred available tool. conn performs the PATH
// lookups for the external fallbacks.
func Select(ctx context.Context, conn connector.Connector, disableNative bool) (Tool, error) {
	if !disableNative {
		return &nativeTool{}, nil
	}
	for _, name := range []string{common.CurlBinaryName, common.WgetBinaryName} {
		if _, err := conn.LookPath(ctx, name); err == nil {
			return &execTool{name: name, conn: conn}, nil
		}
	}
	return nil, ErrNoTransferTool
}

// nativeTool downloads with net/http and renders a progress bar to stderr.
type nativeTool struct {
	// Quiet suppresses the progress bar, for tests and non-tty runs.
	Quiet bool
}

func (t *nativeTool) Name() string { return "native" }

func (t *nativeTool) Fetch(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %s", url)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("download failed with status code %d from url %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", destPath)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create destination file %s", destPath)
	}
	defer out.Close()

	var dst io.Writer = out
	if !t.Quiet {
		bar := progressbar.NewOptions64(
			resp.ContentLength,
			progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", filepath.Base(destPath))),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
		)
		defer bar.Finish()
		dst = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		os.Remove(destPath)
		return errors.Wrapf(err, "failed to write %s", destPath)
	}
	return nil
}

// execTool shells out to curl or wget through a connector.
type execTool struct {
	name string
	conn connector.Connector
}

func (t *execTool) Name() string { return t.name }

func (t *execTool) Fetch(ctx context.Context, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", destPath)
	}

	var cmd string
	switch t.name {
	case common.CurlBinaryName:
		cmd = "curl -fsSL -o " + connector.ShellEscape(destPath) + " " + connector.ShellEscape(url)
	case common.WgetBinaryName:
		cmd = "wget -q -O " + connector.ShellEscape(destPath) + " " + connector.ShellEscape(url)
	default:
		return errors.Errorf("unknown transfer tool %q", t.name)
	}

	opts := &connector.ExecOptions{Timeout: common.DefaultDownloadTimeout}
	if _, stderr, err := t.conn.Exec(ctx, cmd, opts); err != nil {
		os.Remove(destPath)
		return errors.Wrapf(err, "%s download of %s failed: %s", t.name, url, stderr)
	}
	return nil
}
