package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
)

// maxRemoteImage bounds a single fetched image.
const maxRemoteImage = 16 << 20

// Loader resolves the image references of a package. Data URLs are decoded in place and
// http(s) URLs are fetched once and kept for the cache lifetime.
type Loader struct {
	client *http.Client
	cache  *cache.Cache
	log    zerolog.Logger
}

func NewLoader(client *http.Client, ttl time.Duration, log zerolog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Loader{client: client, cache: cache.New(ttl, 2*ttl), log: log}
}

// Bytes returns the raw encoded image behind src.
func (l *Loader) Bytes(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return nil, fmt.Errorf("empty image reference")
	case model.IsDataURL(src):
		_, data, err := model.ParseDataURL(src)
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		return data, nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		if v, ok := l.cache.Get(src); ok {
			return v.([]byte), nil
		}
		data, err := l.fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		l.cache.Set(src, data, cache.DefaultExpiration)
		return data, nil
	}
	return nil, fmt.Errorf("unsupported image reference %q", preview(src))
}

// Image decodes the image behind src.
func (l *Loader) Image(ctx context.Context, src string) (image.Image, error) {
	data, err := l.Bytes(ctx, src)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", preview(src), err)
	}
	l.log.Debug().Str("format", format).Str("src", preview(src)).Msg("image decoded")
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteImage+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) > maxRemoteImage {
		return nil, fmt.Errorf("fetch %s: image exceeds %d bytes", url, maxRemoteImage)
	}
	l.log.Debug().Str("url", url).Int("bytes", len(data)).Msg("remote image fetched")
	return data, nil
}

func preview(s string) string {
	if len(s) > 48 {
		return s[:48] + "..."
	}
	return s
}
