package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/policylogs/internal/filex"
	"github.com/dmitrijs2005/policylogs/internal/netx"
)

const downloadDir = "download"

// Doc downloads the policy document attached to a log into ./download.
func (a *App) Doc(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter log id")
	if err != nil {
		return err
	}

	r, err := a.logs.FetchOne(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	a.track(nil)

	if r.Document == nil || strings.TrimSpace(*r.Document) == "" {
		a.printf("Log #%d has no document\n", id)
		return nil
	}

	docURL, err := a.resolveURL(*r.Document)
	if err != nil {
		a.printf("error: %s\n", err)
		return err
	}

	body, err := netx.Download(ctx, a.docs, docURL)
	if err != nil {
		a.logger.Warn(ctx, "document download failed", "id", id, "err", err)
		a.printf("error: %s\n", err)
		return err
	}

	dir, err := filex.EnsureSubdDir(downloadDir)
	if err != nil {
		a.printf("error: %s\n", err)
		return err
	}

	path, err := filex.WriteFileIn(dir, netx.FileName(docURL, fmt.Sprintf("policy-%d", id)), body)
	if err != nil {
		a.printf("error: %s\n", err)
		return err
	}

	a.printf("Saved %d bytes to %s\n", len(body), path)
	return nil
}

// resolveURL turns a document reference into an absolute URL. Relative
// references are resolved against the server base URL.
func (a *App) resolveURL(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid document url %q", ref)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if a.config == nil || a.config.ServerBaseURL == "" {
		return "", fmt.Errorf("cannot resolve document url %q", ref)
	}
	base, err := url.Parse(a.config.ServerBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}
