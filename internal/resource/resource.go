// Package resource acquires the static model resources (vocabulary,
// contraction table) during initialization. A resource reference is either a
// local filesystem path or an http(s) URL; URLs are downloaded once to a
// temp file and read from there.
package resource

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const fetchTimeout = 60 * time.Second

var httpClient = &http.Client{Timeout: fetchTimeout}

// Localize resolves a resource reference to a local file path. Local paths
// pass through after an existence check; URLs are downloaded into dir (or
// the default temp dir when dir is empty).
func Localize(ref, dir string) (string, error) {
	if !isURL(ref) {
		if _, err := os.Stat(ref); err != nil {
			return "", fmt.Errorf("resource: %w", err)
		}
		return ref, nil
	}

	if dir == "" {
		dir = os.TempDir()
	}
	name, err := remoteFilename(ref)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, name)
	if err := download(ref, dest); err != nil {
		return "", err
	}
	slog.Info("downloaded resource", "url", ref, "path", dest)
	return dest, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// remoteFilename derives the destination filename from the URL path alone,
// so query strings (signed blob-storage URLs carry them) never end up in the
// filename.
func remoteFilename(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("resource: parsing %s: %w", ref, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("resource: %s has no usable filename", ref)
	}
	return name, nil
}

func download(url, dest string) (retErr error) {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("resource: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("resource: closing file: %w", cerr)
		}
	}()

	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("resource: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("resource: fetching %s: status %d", url, resp.StatusCode)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("resource: saving %s: %w", url, err)
	}
	return nil
}
