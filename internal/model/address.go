package model

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ParseRoot parses a root address. Anything without a scheme (or with a
// single-letter drive "scheme") is treated as a local file path.
func ParseRoot(root string) (*url.URL, error) {
	if root == "" {
		return nil, fmt.Errorf("root address is empty")
	}
	u, err := url.Parse(root)
	if err == nil && len(u.Scheme) > 1 {
		return u, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path %q: %w", root, err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// drive-letter paths: file:///C:/dir
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

// Resolve combines root with a local reference into an absolute address.
// An empty reference resolves to the root itself.
func Resolve(root, ref string) (string, error) {
	base, err := ParseRoot(root)
	if err != nil {
		return "", err
	}
	if ref == "" {
		return base.String(), nil
	}
	rel, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", ref, err)
	}
	return base.ResolveReference(rel).String(), nil
}

// IsFileAddress reports whether an absolute address points at the local
// filesystem.
func IsFileAddress(address string) bool {
	return strings.HasPrefix(address, "file:")
}
