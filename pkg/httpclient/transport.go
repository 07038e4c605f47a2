package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/klauspost/compress/gzhttp"
)

// TransportConfig holds the connection settings of the REST client.
type TransportConfig struct {
	CAFile             string
	InsecureSkipVerify bool
	Proxy              string
	Compression        bool
}

// NewTransport builds the round tripper for cfg on top of http.DefaultTransport.
func NewTransport(cfg TransportConfig) (http.RoundTripper, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read cafile %s: %w", cfg.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in cafile %s", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}
	t.TLSClientConfig = tlsConfig

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %s: %w", cfg.Proxy, err)
		}
		t.Proxy = http.ProxyURL(proxyURL)
	}

	if cfg.Compression {
		return gzhttp.Transport(t), nil
	}
	return t, nil
}
