package dart

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/wonny/scorecard/pkg/httputil"
	"github.com/wonny/scorecard/pkg/logger"
)

// Client handles communication with DART (Data Analysis, Retrieval and Transfer System) API
// ⭐ SSOT: DART API 호출은 이 클라이언트에서만
type Client struct {
	http    *httputil.Client
	logger  *logger.Logger
	apiKey  string
	baseURL string
}

// NewClient creates a new DART API client.
// http는 LegacyTransport를 사용하도록 구성되어 있어야 함
func NewClient(apiKey, baseURL string, http *httputil.Client, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://opendart.fss.or.kr"
	}
	return &Client{
		http:    http,
		logger:  log.WithField("module", "dart"),
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// LegacyTransport returns a transport compatible with the DART server.
// DART 서버는 RSA key exchange만 지원하며 Go 1.22+ 기본값에서 빠져 있음
func LegacyTransport() *http.Transport {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,

			// RSA KEX (legacy) - required for DART API
			tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_RSA_WITH_AES_128_CBC_SHA,
			tls.TLS_RSA_WITH_AES_256_CBC_SHA,
		},
	}

	return &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		TLSClientConfig:       tlsCfg,
		MaxIdleConns:          20,
		MaxConnsPerHost:       5, // Reduced to avoid overwhelming DART API
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
