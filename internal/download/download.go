// Package download fetches mmCIF structure files by ID from the RCSB
// archive into a local cache directory, the same http.Get-then-io.Copy
// idiom the teacher uses for its GenBank clone downloader.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/flexfold/ensemble/internal/ensemble"
)

const structureURLTemplate = "https://files.rcsb.org/download/%s.cif"

// Cache is the default ensemble.StructureDownloader: it fetches a
// structure's mmCIF file into Dir (creating it on first use) and
// returns the cached path on subsequent calls without re-fetching.
type Cache struct {
	Dir        string
	HTTPClient *http.Client
	URLTemplate string
}

func NewCache(dir string) *Cache {
	return &Cache{Dir: dir, HTTPClient: http.DefaultClient, URLTemplate: structureURLTemplate}
}

func (c *Cache) Download(ctx context.Context, structureID string) (string, error) {
	id := strings.ToUpper(structureID)
	path := filepath.Join(c.Dir, id+".cif")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("download: creating cache dir: %w", err)
	}

	url := fmt.Sprintf(c.URLTemplate, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ensemble.ErrNotAvailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s not found at %s", ensemble.ErrNotAvailable, id, url)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d for %s", ensemble.ErrNotAvailable, resp.StatusCode, url)
	}

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}
