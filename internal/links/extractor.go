// Package links pulls hyperlink targets out of an index document.
package links

import (
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"github.com/altinukshini/urlgrep/internal/model"
)

// ErrNoLinks covers both a missing document and a document without any
// anchor carrying an href.
var ErrNoLinks = errors.New("no urls inside document")

// Parse builds a document from r.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Extract returns every a[href] value in document order, unmodified.
func Extract(doc *goquery.Document) ([]string, error) {
	if doc == nil || doc.Selection == nil || len(doc.Nodes) == 0 {
		return nil, ErrNoLinks
	}
	var refs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			refs = append(refs, href)
		}
	})
	if len(refs) == 0 {
		return nil, ErrNoLinks
	}
	return refs, nil
}

// Filter keeps the references whose suffix matches one of exts. Order and
// duplicates are preserved; deduplication is the session's job.
func Filter(refs []string, exts []string) []string {
	var out []string
	for _, ref := range refs {
		if model.MatchesExtension(ref, exts) {
			out = append(out, ref)
		}
	}
	return out
}
