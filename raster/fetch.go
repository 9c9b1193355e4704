package raster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vincent-petithory/dataurl"
	"go.uber.org/zap"

	"tmplgen/misc"
)

// maxAssetSize limits amount of data read for a single asset.
const maxAssetSize = 32 << 20

// Fetcher retrieves assets referenced by markup: http(s), file and data URLs
// and plain file system paths.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	log       *zap.Logger
}

// NewFetcher returns fetcher bounding every request with timeout (no limit
// when timeout is 0).
func NewFetcher(timeout time.Duration, log *zap.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("too many redirects")
				}
				if !isHTTPScheme(req.URL) {
					return errors.New("redirect to unsupported scheme")
				}
				return nil
			},
		},
		timeout:   timeout,
		userAgent: misc.GetAppName() + "/" + misc.GetVersion(),
		log:       log.Named("fetch"),
	}
}

// Fetch returns content of the asset.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("empty asset reference")
	}

	if strings.HasPrefix(strings.ToLower(ref), "data:") {
		du, err := dataurl.DecodeString(ref)
		if err != nil {
			return nil, fmt.Errorf("bad data url: %w", err)
		}
		return du.Data, nil
	}

	u, err := url.Parse(ref)
	if err != nil || isLocalPath(u) {
		return f.readFile(ref)
	}

	switch strings.ToLower(u.Scheme) {
	case "":
		// protocol relative
		u.Scheme = "https"
		return f.get(ctx, u)
	case "http", "https":
		return f.get(ctx, u)
	case "file":
		return f.readFile(filepath.FromSlash(u.Path))
	default:
		return nil, fmt.Errorf("unsupported asset scheme %q", u.Scheme)
	}
}

func (f *Fetcher) readFile(name string) ([]byte, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if fi.Size() > maxAssetSize {
		return nil, fmt.Errorf("asset '%s' is too big (%d bytes)", name, fi.Size())
	}
	f.log.Debug("Reading asset", zap.String("path", name))
	return os.ReadFile(name)
}

func (f *Fetcher) get(ctx context.Context, u *url.URL) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status fetching '%s': %d", u.Redacted(), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("asset '%s' is too big", u.Redacted())
	}
	f.log.Debug("Asset fetched", zap.String("url", u.Redacted()), zap.Int("bytes", len(data)),
		zap.String("content-type", resp.Header.Get("Content-Type")), zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isLocalPath reports whether parsed reference is a file system path rather
// than URL. Windows drive letters parse as single letter schemes.
func isLocalPath(u *url.URL) bool {
	if len(u.Scheme) == 1 {
		return true
	}
	return u.Scheme == "" && u.Host == ""
}
