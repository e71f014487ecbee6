package ndk

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Transport fetches a single URL into a local file.
type Transport interface {
	Name() string
	Fetch(ctx context.Context, url, dst string) error
}

// DefaultTransports returns the transports tried in order: go-getter first, then a plain HTTP
// client.
func DefaultTransports() []Transport {
	return []Transport{&GetterTransport{}, &HTTPTransport{}}
}

// GetterTransport downloads with hashicorp/go-getter in single file mode. Automatic archive
// decompression is disabled; extraction is a separate step.
type GetterTransport struct {
	// Client is used for http(s) sources. Nil uses go-getter's default client.
	Client *http.Client
}

// Name implements Transport.
func (t *GetterTransport) Name() string {
	return "go-getter"
}

// Fetch implements Transport.
func (t *GetterTransport) Fetch(ctx context.Context, url, dst string) error {
	httpGetter := &getter.HttpGetter{Client: t.Client}
	client := &getter.Client{
		Ctx:  ctx,
		Src:  url,
		Dst:  dst,
		Mode: getter.ClientModeFile,
		Getters: map[string]getter.Getter{
			"http":  httpGetter,
			"https": httpGetter,
		},
		Decompressors: map[string]getter.Decompressor{},
	}
	return client.Get()
}

// HTTPTransport downloads with a plain net/http GET.
type HTTPTransport struct {
	Client *http.Client
}

// Name implements Transport.
func (t *HTTPTransport) Name() string {
	return "http"
}

// Fetch implements Transport.
func (t *HTTPTransport) Fetch(ctx context.Context, url, dst string) (err error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	//nolint:bodyclose // closed below via multierr
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, resp.Body.Close())
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %q", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	//nolint:gosec
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return multierr.Combine(errors.Wrap(err, "failed to write download"), out.Close(), os.Remove(dst))
	}
	return out.Close()
}
