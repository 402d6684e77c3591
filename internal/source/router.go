package source

import (
	"github.com/JonMunkholm/csvunion/internal/config"
)

// NewRouter builds the Router for the configured sources. HTTP is always
// served; S3 only with an endpoint and local files only when allowed.
func NewRouter(fetch config.FetchConfig, s3 config.S3Config) (*Router, error) {
	r := &Router{
		HTTP: NewHTTPSource(HTTPConfig{
			Timeout:   fetch.Timeout,
			MaxBytes:  fetch.MaxBytes,
			RateLimit: fetch.RateLimit,
			RateBurst: fetch.RateBurst,
			UserAgent: fetch.UserAgent,
		}),
	}

	if s3.Enabled() {
		src, err := NewS3Source(S3Config{
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			Region:          s3.Region,
			UseSSL:          s3.UseSSL,
			MaxBytes:        fetch.MaxBytes,
		})
		if err != nil {
			return nil, err
		}
		r.S3 = src
	}

	if fetch.AllowFiles {
		r.File = FileSource{MaxBytes: fetch.MaxBytes}
	}

	return r, nil
}
