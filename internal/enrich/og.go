package enrich

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/socialsync-hq/fbgraph/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB

	defaultTimeout = 15 * time.Second
)

// PageMeta holds metadata extracted from a page's public HTML.
type PageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

// Scraper fetches a page's public URL and extracts metadata from OG tags.
// It complements Graph lookups for fields the API withholds or leaves empty.
type Scraper struct {
	client httpclient.Client
}

// NewScraper constructs a scraper with the provided HTTP client (or default).
func NewScraper(client httpclient.Client) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout)
	}
	return &Scraper{client: client}
}

// PageMeta fetches pageURL and parses its OG metadata.
func (s *Scraper) PageMeta(ctx context.Context, pageURL string, headers map[string]string) (PageMeta, error) {
	resp, err := s.client.Get(ctx, pageURL, nil, headers)
	if err != nil {
		return PageMeta{}, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != 200 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return PageMeta{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	return parseMeta(body)
}

// Merge fills empty fields of a Graph page response from scraped metadata:
// name, description (about), and picture are only overridden when absent.
func Merge(name, about, picture string, meta PageMeta) (string, string, string) {
	if name == "" {
		name = meta.Title
	}
	if about == "" {
		about = meta.Description
	}
	if picture == "" {
		picture = meta.ImageURL
	}
	return name, about, picture
}

func parseMeta(body []byte) (PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	pm := PageMeta{}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm.Title = firstNonEmpty(
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	pm.Description = firstNonEmpty(
		extract(`meta[property="og:description"]`),
		extract(`meta[name="description"]`),
	)
	pm.ImageURL = extract(`meta[property="og:image"]`)

	return pm, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
