// Package source lists articles from configured news sites and materializes
// their text. A Source discovers article links on the listing pages; the
// resulting handles download and parse themselves on demand.
package source

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"news_miner/internal/config"
	"news_miner/internal/urlutil"

	"github.com/gocolly/colly"
	"github.com/temoto/robotstxt"
)

const MaxHops = 15

// Options carries the shared fetch settings for a source.
type Options struct {
	Timeout   time.Duration
	DelayMS   int
	UserAgent string
	Cache     PageCache
}

type Source struct {
	name        string
	cfg         config.SourceConfig
	opts        Options
	client      *http.Client
	robotsOnce  sync.Once
	robotsGroup *robotstxt.Group
	hosts       map[string]bool
}

func New(name string, cfg config.SourceConfig, opts Options) *Source {
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (NewsMiner/1.0)"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	jar, _ := cookiejar.New(nil)

	hosts := make(map[string]bool)
	for _, startURL := range cfg.StartURLs {
		if u, err := url.Parse(startURL); err == nil && u.Host != "" {
			hosts[strings.TrimPrefix(u.Host, "www.")] = true
		}
	}

	return &Source{
		name: name,
		cfg:  cfg,
		opts: opts,
		client: &http.Client{
			Transport: &http.Transport{
				DisableKeepAlives: true,
				MaxIdleConns:      0,
			},
			Jar:     jar,
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxHops {
					return fmt.Errorf("stopped after %d redirects (MaxHops exceeded)", MaxHops)
				}
				return nil
			},
		},
		hosts: hosts,
	}
}

// Name returns the configured source name.
func (s *Source) Name() string { return s.name }

// Handle mints an undownloaded handle for a known article URL, used when
// re-mining stale documents without going through discovery.
func (s *Source) Handle(articleURL string) *Handle {
	return &Handle{
		URL:    articleURL,
		Source: s.name,
		src:    s,
	}
}

// Build visits the source's listing pages and returns handles for every
// discovered article link, in discovery order, capped at max_articles. The
// handles are not downloaded yet.
func (s *Source) Build(ctx context.Context) ([]*Handle, error) {
	// robots.txt is fetched once per source; concurrent Builds (overlapping
	// scheduled passes) must not race on robotsGroup.
	s.robotsOnce.Do(s.initRobotsTxt)

	c := colly.NewCollector(
		colly.UserAgent(s.opts.UserAgent),
	)
	c.SetRequestTimeout(s.opts.Timeout)

	if s.opts.DelayMS > 0 {
		_ = c.Limit(&colly.LimitRule{
			DomainGlob: "*",
			Delay:      time.Duration(s.opts.DelayMS) * time.Millisecond,
		})
	}

	seen := make(map[string]bool)
	var handles []*Handle

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if len(handles) >= s.cfg.MaxArticles {
			return
		}

		href := e.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			return
		}

		cleanURL := cleanLink(e.Request.AbsoluteURL(href))
		if cleanURL == "" {
			return
		}

		normalized := urlutil.Normalize(cleanURL)
		if seen[normalized] {
			return
		}
		seen[normalized] = true

		if !s.isAllowedURL(cleanURL) {
			return
		}

		handles = append(handles, &Handle{
			URL:    cleanURL,
			Source: s.name,
			src:    s,
		})
	})

	if len(s.cfg.StartURLs) == 0 {
		return nil, fmt.Errorf("source %s has no start URLs", s.name)
	}

	// Listing pages never become handles themselves.
	for _, startURL := range s.cfg.StartURLs {
		seen[urlutil.Normalize(startURL)] = true
	}

	var lastErr error
	visited := 0
	for _, startURL := range s.cfg.StartURLs {
		select {
		case <-ctx.Done():
			return handles, ctx.Err()
		default:
		}

		if err := c.Visit(startURL); err != nil {
			lastErr = err
			log.Printf("Listing fetch failed for %s: %v", startURL, err)
			continue
		}
		visited++
	}
	c.Wait()

	if visited == 0 && lastErr != nil {
		return nil, fmt.Errorf("all listing pages failed for %s: %w", s.name, lastErr)
	}

	return handles, nil
}

func (s *Source) initRobotsTxt() {
	if len(s.cfg.StartURLs) == 0 {
		return
	}
	u, err := url.Parse(s.cfg.StartURLs[0])
	if err != nil {
		log.Printf("Can't parse start URL for robots.txt: %v", err)
		return
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	resp, err := s.client.Get(robotsURL)
	if err != nil {
		log.Printf("robots.txt fetch failed (ignoring): %v", err)
		return
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		log.Printf("robots.txt parse failed: %v", err)
		return
	}

	s.robotsGroup = data.FindGroup(s.opts.UserAgent)
}

func (s *Source) isAllowedURL(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}

	if len(s.hosts) > 0 && !s.hosts[strings.TrimPrefix(u.Host, "www.")] {
		return false
	}

	if !urlutil.ShouldFollow(link, s.cfg.FollowPatterns, s.cfg.ExcludePatterns) {
		return false
	}

	if s.robotsGroup == nil {
		return true
	}

	return s.robotsGroup.Test(u.Path)
}

// cleanLink strips query and fragment, returns "" for unparseable links.
func cleanLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
