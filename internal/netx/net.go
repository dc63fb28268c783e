// Package netx downloads policy documents referenced by log records.
// Document URLs point at static media, not at the REST API, so no session
// header is attached.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// MaxDocumentSize caps how much of a document is read into memory.
const MaxDocumentSize = 32 << 20

// Download fetches rawURL with GET and returns the body.
// A nil client means http.DefaultClient.
func Download(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxDocumentSize {
		return nil, fmt.Errorf("download failed: document larger than %d bytes", MaxDocumentSize)
	}
	return body, nil
}

// FileName derives a local file name from the last path segment of rawURL,
// falling back to fallback when the URL has none or it names a directory
// such as "..".
func FileName(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	switch base := path.Base(u.Path); base {
	case "", "/", ".", "..":
		return fallback
	default:
		return base
	}
}
