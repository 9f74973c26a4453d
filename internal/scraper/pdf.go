package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JustJay7/case-lookup/pkg/logger"
)

// DownloadName is the file name offered for proxied documents.
const DownloadName = "court_document.pdf"

// DemoMessage is returned instead of a document for demo links.
const DemoMessage = "This is a demo PDF link. In production, this would download the actual court document."

// maxDocumentSize bounds a proxied document.
const maxDocumentSize = 50 << 20

// Document is a fetched file.
type Document struct {
	Body        []byte
	ContentType string
}

// Downloader fetches court documents on behalf of the browser, which cannot
// read them cross-origin.
type Downloader struct {
	client    *http.Client
	userAgent string
	logger    *logger.Logger
}

func NewDownloader(timeout time.Duration, userAgent string, logger *logger.Logger) *Downloader {
	return &Downloader{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// IsDemoURL reports whether rawURL points at the placeholder documents of
// the demo lookup.
func IsDemoURL(rawURL string) bool {
	return strings.Contains(rawURL, "example.com")
}

// Fetch downloads rawURL.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid document URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(body) > maxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDocumentSize)
	}

	d.logger.Info("Document downloaded", "url", rawURL, "size", len(body))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return &Document{Body: body, ContentType: contentType}, nil
}
