package indexer

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// rssFeed is the shared shape of torznab and newznab search responses. Both
// protocols are RSS with provider-specific <attr> extension elements; the
// attr fields match any namespace so one set of structs serves both.
type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title     string        `xml:"title"`
	GUID      string        `xml:"guid"`
	Link      string        `xml:"link"`
	Comments  string        `xml:"comments"`
	PubDate   string        `xml:"pubDate"`
	Enclosure *rssEnclosure `xml:"enclosure"`
	Attrs     []feedAttr    `xml:"attr"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
}

type feedAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// attr returns the first extension attribute with the given name, or "".
func (i *rssItem) attr(name string) string {
	for _, a := range i.Attrs {
		if a.Name == name {
			return a.Value
		}
	}

	return ""
}

// attrs returns every extension attribute value with the given name.
func (i *rssItem) attrs(name string) []string {
	var values []string
	for _, a := range i.Attrs {
		if a.Name == name {
			values = append(values, a.Value)
		}
	}

	return values
}

// searchURL builds the templated query URL shared by both feed protocols.
func searchURL(baseURL, apiPath, apiKey, categories, term string) string {
	if apiPath == "" {
		apiPath = "/api"
	}

	q := url.Values{}
	q.Set("t", "search")
	q.Set("q", term)
	q.Set("apikey", apiKey)
	q.Set("cat", categories)
	q.Set("extended", "1")

	return fmt.Sprintf("%s%s?%s", trimTrailingSlash(baseURL), apiPath, q.Encode())
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}

	return s
}

// fetchFeed performs the wire call and decodes the provider's item list.
func fetchFeed(ctx context.Context, client *http.Client, url string) (*rssFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read response: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("cannot parse feed: %w", err)
	}

	return &feed, nil
}

// parsePubDate accepts the RFC1123 variants indexers emit; an unparseable
// date falls back to now so sorting stays total.
func parsePubDate(value string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}

	return time.Now().UTC()
}
