package model

import (
	"encoding/base64"
	"strings"
)

type AuthMode int

const (
	AuthNone AuthMode = iota
	AuthBasic
	AuthCredential
)

func (m AuthMode) String() string {
	switch m {
	case AuthBasic:
		return "basic"
	case AuthCredential:
		return "credential"
	default:
		return "none"
	}
}

type Credentials struct {
	Mode   AuthMode
	Login  string
	Secret string
}

// BasicHeader returns the Authorization header value for basic mode, or ""
// when basic auth is not configured.
func (c Credentials) BasicHeader() string {
	if c.Mode != AuthBasic || c.Login == "" {
		return ""
	}
	token := base64.StdEncoding.EncodeToString([]byte(c.Login + ":" + c.Secret))
	return "Basic " + token
}

// SearchRequest is the configuration of one search run. It is passed by
// value; the session keeps the current pattern separately so units can be
// reused when only the pattern changes.
type SearchRequest struct {
	Root       string
	Extensions []string
	Pattern    string
	Auth       Credentials
}

// NewSearchRequest builds a request from raw form values. Auth is only
// enabled when a login is present; isBasic picks the header mode over
// challenge-driven credentials.
func NewSearchRequest(root, extensionList, pattern, login, secret string, isBasic bool) SearchRequest {
	req := SearchRequest{
		Root:       strings.TrimSpace(root),
		Extensions: ParseExtensions(extensionList),
		Pattern:    pattern,
	}
	if login != "" {
		mode := AuthCredential
		if isBasic {
			mode = AuthBasic
		}
		req.Auth = Credentials{Mode: mode, Login: login, Secret: secret}
	}
	return req
}

// HasFilter reports whether the root should be treated as an index page.
func (r SearchRequest) HasFilter() bool {
	return len(r.Extensions) > 0
}

// ParseExtensions splits a comma-separated extension list, dropping empty
// entries and surrounding whitespace. A leading dot is tolerated.
func ParseExtensions(list string) []string {
	var exts []string
	for _, part := range strings.Split(list, ",") {
		ext := strings.TrimPrefix(strings.TrimSpace(part), ".")
		if ext == "" {
			continue
		}
		exts = append(exts, ext)
	}
	return exts
}

// MatchesExtension reports whether ref ends with "."+ext for any ext.
// The comparison is case-sensitive.
func MatchesExtension(ref string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(ref, "."+ext) {
			return true
		}
	}
	return false
}
