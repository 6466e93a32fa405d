package jobfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Content containers tried in order before falling back to the full body.
var contentSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	".content",
	".job-description",
	"#job-description",
}

// Fetcher retrieves job postings by URL and reduces them to readable text.
// The returned text is handled exactly like pasted job text downstream.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      *errors.Logger
}

// New creates a Fetcher from configuration.
func New(cfg config.JobFetchConfig, logger *errors.Logger) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: cfg.Timeout},
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
		logger:      logger,
	}
}

// Fetch downloads the page at rawURL and extracts its readable text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", errors.NewValidationError(errors.CodeInvalidInput,
			fmt.Sprintf("Invalid job posting URL: %s", rawURL), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.NewInternalError(errors.CodeInternalError,
			"Failed to build job fetch request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.logger.Debug("Fetching job posting", "url", rawURL)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.NewUpstreamError(errors.CodeJobFetchFailed,
			"Failed to fetch job posting", err).WithContext("url", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewUpstreamError(errors.CodeJobFetchFailed,
			fmt.Sprintf("Job posting fetch returned status %d", resp.StatusCode), nil).
			WithContext("url", rawURL).
			WithContext("status_code", resp.StatusCode)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", errors.NewUpstreamError(errors.CodeJobFetchFailed,
			"Failed to parse job posting HTML", err).WithContext("url", rawURL)
	}

	f.logger.Debug("Extracted job posting text", "url", rawURL, "length", len(text))

	return text, nil
}

// ExtractText reduces an HTML document to collapsed readable text. Chrome
// (script, style, nav, header, footer) is stripped, then the first non-empty
// content container wins; the whole body is the fallback.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, header, footer").Remove()

	for _, selector := range contentSelectors {
		if text := selectionText(doc.Find(selector).First()); text != "" {
			return text, nil
		}
	}

	return selectionText(doc.Find("body")), nil
}

// selectionText collects the text nodes under a selection separated by
// spaces. Selection.Text concatenates adjacent elements directly, which
// glues "<h1>Engineer</h1><p>We need" into "EngineerWe need".
func selectionText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, node := range sel.Nodes {
		appendText(node, &sb)
	}
	return collapseWhitespace(sb.String())
}

func appendText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, sb)
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
