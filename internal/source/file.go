package source

import (
	"context"
	"net/url"
	"os"
	"strings"
)

// FileSource reads CSV from the local filesystem.
type FileSource struct {
	MaxBytes int64
}

// Fetch reads the file named by a plain path or a file:// URL.
func (s FileSource) Fetch(ctx context.Context, locator string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}

	path := locator
	if strings.HasPrefix(strings.ToLower(locator), "file://") {
		u, err := url.Parse(locator)
		if err != nil {
			return "", &FetchError{Locator: locator, Err: err}
		}
		path = u.Host + u.Path
	}

	f, err := os.Open(path)
	if err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}
	defer f.Close()

	text, err := ReadText(f, s.MaxBytes)
	if err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}
	return text, nil
}
