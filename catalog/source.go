package catalog

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rustyeddy/stakesim/catalog/assets"
)

// Source opens a named reference data asset.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FSSource reads assets from a file system.
type FSSource struct {
	FS fs.FS
}

func (s FSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.FS.Open(name)
}

// Embedded returns a source over the assets bundled with the binary.
func Embedded() FSSource {
	return FSSource{FS: assets.FS}
}

// Dir returns a source reading assets from a directory on disk.
func Dir(path string) FSSource {
	return FSSource{FS: os.DirFS(path)}
}

// HTTPSource fetches assets relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	u, err := url.JoinPath(s.BaseURL, name)
	if err != nil {
		return nil, fmt.Errorf("asset url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return resp.Body, nil
}
