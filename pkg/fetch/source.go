package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/tuxinal/packwiz-parent-pack/pkg/hashfmt"
	"github.com/tuxinal/packwiz-parent-pack/pkg/paths"
)

// ParseBase parses the URL of a remote pack.toml.
func ParseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse parent url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf(
			"parent url %q: unsupported scheme %q", raw, u.Scheme,
		)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parent url %q has no host", raw)
	}
	return u, nil
}

// ResolveURL replaces the last path segment of base (normally
// pack.toml) with the slash-separated relative path rel.
func ResolveURL(base *url.URL, rel string) (*url.URL, error) {
	if err := paths.ValidateRelPath(rel); err != nil {
		return nil, err
	}
	return base.ResolveReference(&url.URL{Path: rel}), nil
}

// Remote fetches files relative to a parent pack's URL and verifies them.
type Remote struct {
	Getter Getter
	Base   *url.URL
}

func (r *Remote) URL(rel string) (string, error) {
	u, err := ResolveURL(r.Base, rel)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (r *Remote) Fetch(
	ctx context.Context,
	rel, hash string,
	format hashfmt.Format,
) ([]byte, error) {
	u, err := r.URL(rel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	data, err := r.Getter.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := hashfmt.Verify(data, hash, format); err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	return data, nil
}

// Local reads files from the child pack's directory. Its contents are
// the override layer and are never verified.
type Local struct {
	Dir string
}

// Exists reports whether rel names a regular file under Dir.
func (l *Local) Exists(rel string) (bool, error) {
	p, err := paths.Join(l.Dir, rel)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (l *Local) Read(rel string) ([]byte, error) {
	p, err := paths.Join(l.Dir, rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}
