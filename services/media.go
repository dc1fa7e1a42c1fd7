package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"social-search-platform/internal/logger"
)

// ErrNoMedia is returned when a post page carries no resolvable media tags.
var ErrNoMedia = errors.New("no media found on page")

// allowedMediaHosts are the only hosts the resolver will fetch. The post
// URL comes from stored scrape data but is still treated as untrusted.
var allowedMediaHosts = map[string]bool{
	"www.instagram.com": true,
	"instagram.com":     true,
	"www.tiktok.com":    true,
	"tiktok.com":        true,
}

// MediaInfo is the resolved preview metadata of one post page.
type MediaInfo struct {
	VideoURL string `json:"video_url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Title    string `json:"title,omitempty"`
}

// MediaService resolves preview media for post URLs by reading the page's
// Open Graph tags. Scrape payloads often omit a direct video URL and the
// dashboard needs one for inline playback.
type MediaService struct {
	httpClient *http.Client
}

func NewMediaService() *MediaService {
	return &MediaService{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Resolve fetches the post page and extracts og:video, og:image and
// og:title. Only Instagram and TikTok hosts are fetched.
func (s *MediaService) Resolve(ctx context.Context, postURL string) (*MediaInfo, error) {
	parsed, err := url.Parse(postURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid post url")
	}
	if !allowedMediaHosts[strings.ToLower(parsed.Host)] {
		return nil, fmt.Errorf("unsupported media host: %s", parsed.Host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; social-search-bot/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post page returned status %d", resp.StatusCode)
	}

	// Post pages occasionally declare non-UTF-8 charsets
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	info := &MediaInfo{
		VideoURL: metaContent(doc, "og:video", "og:video:secure_url"),
		ImageURL: metaContent(doc, "og:image"),
		Title:    metaContent(doc, "og:title"),
	}

	if info.VideoURL == "" && info.ImageURL == "" {
		logger.Debug("No media tags on post page", "url", postURL)
		return nil, ErrNoMedia
	}
	return info, nil
}

// metaContent returns the content of the first matching og property.
func metaContent(doc *goquery.Document, properties ...string) string {
	for _, prop := range properties {
		selector := fmt.Sprintf(`meta[property=%q]`, prop)
		if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
			return content
		}
	}
	return ""
}
