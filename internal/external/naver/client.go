package naver

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/text/encoding/korean"

	"github.com/wonny/scorecard/pkg/httputil"
	"github.com/wonny/scorecard/pkg/logger"
)

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Naver Finance client
func NewClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://finance.naver.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "naver"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// fetchHTML fetches an EUC-KR page from Naver Finance and returns it as UTF-8
func (c *Client) fetchHTML(ctx context.Context, path string, params url.Values) (string, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}

	decoded, err := io.ReadAll(korean.EUCKR.NewDecoder().Reader(strings.NewReader(string(body))))
	if err != nil {
		return "", fmt.Errorf("failed to decode EUC-KR body: %w", err)
	}

	return string(decoded), nil
}
