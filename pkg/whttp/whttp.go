// Package whttp is a thin HTTP GET wrapper used to download the
// compatibility datasets. It classifies each body as JSON or plain text and
// applies a hard deadline per request. Retrying is the caller's job.
package whttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

const (
	DefaultTimeout = 5000 * time.Millisecond

	userAgent           = "jscompat (+https://github.com/jscompat/jscompat)"
	maxResponseBodySize = 16 << 20 // the full caniuse dataset is a few MB
)

var jsonContentType = regexp.MustCompile(`(?i)json`)

// Payload is the outcome of one successful request.
type Payload struct {
	URL     string
	Status  int
	Body    []byte
	IsJSON  bool   // declared JSON content type and body validated as JSON
	Title   string // <title> text when the body is an HTML document
}

// Client issues single GET requests with a timeout. The zero value is not
// usable; call NewClient.
type Client struct {
	Timeout time.Duration
	HTTP    *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Timeout: timeout,
		HTTP:    &http.Client{},
	}
}

// Fetch downloads url and classifies the body. A status outside [200,400)
// is an error; a declared-JSON body that fails to validate silently degrades
// to plain text. Exactly one of (payload, error) is non-nil.
func (c *Client) Fetch(ctx context.Context, url string) (*Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %s failed with status code %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		URL:    url,
		Status: resp.StatusCode,
		Body:   body,
	}

	contentType := resp.Header.Get("Content-Type")
	if jsonContentType.MatchString(contentType) && gjson.ValidBytes(body) {
		payload.IsJSON = true
	} else if strings.Contains(strings.ToLower(contentType), "html") {
		if title, ok := getHTMLTitle(string(body)); ok {
			payload.Title = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", ""))
		}
	}

	return payload, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	return traverse(doc)
}
