// Package source fetches raw CSV text for a table locator.
//
// A locator is an http(s) URL, an s3://bucket/key object reference, a
// file:// URL or a plain filesystem path. Every fetcher returns the whole
// document as a string with any UTF-8 byte order mark removed and invalid
// UTF-8 replaced, and reports failures as *FetchError. Nothing is retried.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// DefaultMaxBytes caps a fetched document when no limit is configured.
const DefaultMaxBytes int64 = 100 << 20

// ErrTooLarge is wrapped by a FetchError when a document exceeds the limit.
var ErrTooLarge = errors.New("document too large")

// ErrUnsupportedScheme is wrapped by a FetchError for unknown locator schemes.
var ErrUnsupportedScheme = errors.New("unsupported locator scheme")

// TextSource fetches the CSV text behind a locator.
type TextSource interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// FetchError reports a transport failure or a non-success response.
type FetchError struct {
	Locator    string
	StatusCode int // HTTP or S3 status; 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Locator, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadText reads r up to limit bytes (DefaultMaxBytes when limit <= 0),
// drops a leading BOM and replaces invalid UTF-8 sequences with U+FFFD.
func ReadText(r io.Reader, limit int64) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	br := bufio.NewReader(io.LimitReader(r, limit+1))
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return "", err
		}
		limit -= int64(len(utf8BOM))
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, limit)
	}

	return strings.ToValidUTF8(string(data), "�"), nil
}

// Router dispatches a locator to the fetcher for its scheme.
type Router struct {
	HTTP TextSource // http and https
	S3   TextSource // s3; nil when object storage is not configured
	File TextSource // file:// and plain paths
}

// Fetch implements TextSource.
func (r *Router) Fetch(ctx context.Context, locator string) (string, error) {
	var src TextSource
	switch scheme(locator) {
	case "http", "https":
		src = r.HTTP
	case "s3":
		src = r.S3
	case "", "file":
		src = r.File
	}
	if src == nil {
		return "", &FetchError{Locator: locator, Err: ErrUnsupportedScheme}
	}
	return src.Fetch(ctx, locator)
}

// scheme returns the lowercased URL scheme of locator, or "" for a path.
func scheme(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	// A one-letter scheme is a Windows drive letter.
	if len(u.Scheme) <= 1 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
