package diagram

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrUnavailable reports that no image could be produced. The graph description is still valid.
var ErrUnavailable = errors.New("diagram rendering unavailable")

const (
	DefaultDotPath = "dot"
	DefaultFormat  = "png"
	DefaultTimeout = 10 * time.Second
)

// Renderer rasterizes graphs with the graphviz dot binary.
type Renderer struct {
	// DotPath is the dot executable, looked up in PATH when it has no separator.
	DotPath string
	// Format is the dot -T output format.
	Format  string
	Timeout time.Duration
}

// NewRenderer returns a Renderer with defaults filled in for empty fields.
func NewRenderer(dotPath, format string, timeout time.Duration) *Renderer {
	r := &Renderer{DotPath: dotPath, Format: format, Timeout: timeout}
	if r.DotPath == "" {
		r.DotPath = DefaultDotPath
	}
	if r.Format == "" {
		r.Format = DefaultFormat
	}
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	return r
}

// Available reports whether the dot binary can be found.
func (r *Renderer) Available() bool {
	_, err := exec.LookPath(r.DotPath)
	return err == nil
}

// Render pipes g through dot and returns the image bytes. Every failure wraps ErrUnavailable.
func (r *Renderer) Render(ctx context.Context, g *Graph) ([]byte, error) {
	path, err := exec.LookPath(r.DotPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-T"+r.Format)
	cmd.Stdin = strings.NewReader(DOT(g))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: dot failed: %s", ErrUnavailable, msg)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: dot produced no output", ErrUnavailable)
	}
	return stdout.Bytes(), nil
}

// RenderBase64 is Render with the image encoded as standard base64.
func (r *Renderer) RenderBase64(ctx context.Context, g *Graph) (string, error) {
	image, err := r.Render(ctx, g)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(image), nil
}
