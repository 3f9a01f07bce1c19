// Package fetch retrieves resource content over HTTP(S) or from the local
// filesystem, streaming it in fixed-size chunks so a run can be cancelled
// between chunks.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/altinukshini/urlgrep/internal/logger"
	"github.com/altinukshini/urlgrep/internal/model"
)

// ChunkSize is the read buffer size; cancellation is checked after each chunk.
const ChunkSize = 100 * 1024

const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// ErrCancelled is returned when the context is cancelled mid-transfer. The
// partial content is discarded.
var ErrCancelled = errors.New("fetch cancelled")

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Address    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.Address)
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	log       logger.Interface
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

func WithLogger(l logger.Interface) Option {
	return func(f *Fetcher) { f.log = l.WithComponent("fetch") }
}

// newTransport bounds connection setup and the wait for response headers.
// The body transfer has no deadline; large resources are cancelled through
// the request context instead.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.TLSHandshakeTimeout = 10 * time.Second
	t.ResponseHeaderTimeout = time.Minute
	return t
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Transport: newTransport()},
		userAgent: DefaultUserAgent,
		log:       logger.NewNoOp(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves address and returns its content decoded as ASCII text.
func (f *Fetcher) Fetch(ctx context.Context, address string, creds model.Credentials) (string, error) {
	start := time.Now()
	body, err := f.open(ctx, address, creds)
	if err != nil {
		if ctx.Err() != nil {
			return "", ErrCancelled
		}
		return "", err
	}
	defer body.Close()

	text, err := ReadText(ctx, body)
	if err != nil {
		f.log.Debug("fetch interrupted", "address", address, "error", err)
		return "", err
	}
	f.log.Debug("fetched", "address", address, "size", len(text), "took", time.Since(start))
	return text, nil
}

func (f *Fetcher) open(ctx context.Context, address string, creds model.Credentials) (io.ReadCloser, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	if u.Scheme == "file" {
		file, err := os.Open(localPath(u.Path, runtime.GOOS == "windows"))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", u.Path, err)
		}
		return file, nil
	}

	resp, err := f.get(ctx, address, func(req *http.Request) {
		// Basic mode pre-authenticates: the header goes out on the first request.
		if h := creds.BasicHeader(); h != "" {
			req.Header.Set("Authorization", h)
		}
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && creds.Mode == model.AuthCredential && challengesBasic(resp) {
		resp.Body.Close()
		f.log.Debug("answering basic challenge", "address", address)
		resp, err = f.get(ctx, address, func(req *http.Request) {
			req.SetBasicAuth(creds.Login, creds.Secret)
		})
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Address: address, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func (f *Fetcher) get(ctx context.Context, address string, decorate func(*http.Request)) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	decorate(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", address, err)
	}
	return resp, nil
}

// localPath converts a file URL path to a filesystem path. On Windows the
// drive-letter form "/C:/dir/x" drops its leading slash.
func localPath(p string, windows bool) string {
	if windows && len(p) >= 3 && p[0] == '/' && p[2] == ':' && isDriveLetter(p[1]) {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func challengesBasic(resp *http.Response) bool {
	for _, v := range resp.Header.Values("WWW-Authenticate") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "basic") {
			return true
		}
	}
	return false
}

// ReadText drains r in ChunkSize reads, decoding each chunk as ASCII and
// checking ctx after every chunk.
func ReadText(ctx context.Context, r io.Reader) (string, error) {
	buf := make([]byte, ChunkSize)
	var sb strings.Builder
	for {
		n, err := r.Read(buf)
		if n > 0 {
			appendASCII(&sb, buf[:n])
		}
		if ctx.Err() != nil {
			return "", ErrCancelled
		}
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
	}
}

// appendASCII maps bytes outside the 7-bit range to '?', so byte offsets
// and character offsets in the result are the same.
func appendASCII(sb *strings.Builder, p []byte) {
	sb.Grow(len(p))
	for _, b := range p {
		if b > 0x7F {
			b = '?'
		}
		sb.WriteByte(b)
	}
}
