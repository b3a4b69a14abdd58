package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"
)

var (
	ErrNotDownloaded    = errors.New("article not downloaded")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrCaptcha          = errors.New("captcha detected")
)

// PageCache is consulted before the network and updated after a successful
// fetch. A nil cache disables caching.
type PageCache interface {
	Get(ctx context.Context, url string) (body string, statusCode int, ok bool)
	Put(ctx context.Context, url string, statusCode int, body string) error
}

// Handle is one article reference produced by Build. It starts with only a
// URL and is populated in place by Download and Parse. A handle whose
// Download or Parse failed is left partially filled and must not be used.
type Handle struct {
	URL    string
	Source string

	Title       string
	Text        string
	HTML        string
	Excerpt     string
	Byline      string
	PublishedAt *time.Time

	rawHTML    string
	statusCode int
	downloaded bool
	parsed     bool

	src *Source
}

// Downloaded reports whether the raw page body has been fetched.
func (h *Handle) Downloaded() bool { return h.downloaded }

// Parsed reports whether Text and metadata are populated.
func (h *Handle) Parsed() bool { return h.parsed }

// StatusCode returns the HTTP status of the download, zero before Download.
func (h *Handle) StatusCode() int { return h.statusCode }

// Download fetches the article page, going through the page cache when one
// is configured. It does not parse anything.
func (h *Handle) Download(ctx context.Context) error {
	if cache := h.src.opts.Cache; cache != nil {
		if body, status, ok := cache.Get(ctx, h.URL); ok {
			h.rawHTML = body
			h.statusCode = status
			h.downloaded = true
			return nil
		}
	}

	// Politeness delay applies only when the network is hit.
	if delay := h.src.opts.DelayMS; delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(delay) * time.Millisecond):
		}
	}

	body, status, err := h.src.fetchURL(ctx, h.URL)
	h.statusCode = status
	if err != nil {
		return err
	}

	h.rawHTML = body
	h.downloaded = true

	if cache := h.src.opts.Cache; cache != nil {
		// Cache write failures don't fail the download.
		_ = cache.Put(ctx, h.URL, status, body)
	}

	return nil
}

// Parse extracts the readable article from the downloaded page and populates
// Text, Title and metadata. Calling it before a successful Download is an
// error.
func (h *Handle) Parse() error {
	if !h.downloaded {
		return fmt.Errorf("%w: %s", ErrNotDownloaded, h.URL)
	}

	extracted, err := extractContent(h.rawHTML, h.URL)
	if err != nil {
		return err
	}

	h.Title = extracted.Title
	h.Text = extracted.Text
	h.HTML = extracted.HTML
	h.Excerpt = extracted.Excerpt
	h.Byline = extracted.Byline
	h.PublishedAt = extracted.PublishedAt
	h.parsed = true

	return nil
}

type extractedArticle struct {
	Title       string
	Text        string
	HTML        string
	Excerpt     string
	Byline      string
	PublishedAt *time.Time
}

var reWhitespace = regexp.MustCompile(`\s+`)

func normalizeText(text string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// addSpacesBeforeParsing pads block-level tags with spaces so text from
// adjacent blocks doesn't run together after tag stripping.
func addSpacesBeforeParsing(html string) string {
	blockElements := []string{"div", "p", "br", "li", "td", "tr", "h1", "h2", "h3", "h4", "h5", "h6"}
	result := html
	for _, tag := range blockElements {
		result = regexp.MustCompile(`<` + tag + `[^>]*>`).ReplaceAllString(result, " <"+tag+">")
		result = regexp.MustCompile(`</` + tag + `>`).ReplaceAllString(result, "</"+tag+"> ")
	}
	return result
}

func extractContent(rawHTML string, pageURL string) (*extractedArticle, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return nil, err
	}

	processedHTML := addSpacesBeforeParsing(article.Content)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(processedHTML))
	if err != nil {
		return nil, err
	}

	doc.Find("figure, aside, script, style, .dcr-citation, .element-atom, .mw-editsection").Remove()

	return &extractedArticle{
		Title:       article.Title,
		Text:        normalizeText(doc.Text()),
		HTML:        article.Content,
		Excerpt:     article.Excerpt,
		Byline:      article.Byline,
		PublishedAt: article.PublishedTime,
	}, nil
}

// fetchURL downloads a single page, decoding the body to UTF-8 from whatever
// charset the response declares.
func (s *Source) fetchURL(ctx context.Context, urlStr string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return "", 0, err
	}

	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		utf8Reader = resp.Body
	}

	bodyBytes, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", resp.StatusCode, err
	}

	bodyString := string(bodyBytes)
	lowerBody := strings.ToLower(bodyString)

	if strings.Contains(lowerBody, "captcha") ||
		strings.Contains(lowerBody, "security check") {
		return "", resp.StatusCode, ErrCaptcha
	}

	return bodyString, resp.StatusCode, nil
}
