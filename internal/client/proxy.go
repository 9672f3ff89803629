package client

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// ProxyConfig selects proxies per scheme. Empty fields mean a direct connection.
type ProxyConfig struct {
	HTTP    string `yaml:"http,omitempty"`
	HTTPS   string `yaml:"https,omitempty"`
	NoProxy string `yaml:"no_proxy,omitempty"`
}

// ProxyFromEnvironment reads HTTP_PROXY, HTTPS_PROXY and NO_PROXY (and their
// lowercase forms).
func ProxyFromEnvironment() ProxyConfig {
	env := httpproxy.FromEnvironment()
	return ProxyConfig{
		HTTP:    env.HTTPProxy,
		HTTPS:   env.HTTPSProxy,
		NoProxy: env.NoProxy,
	}
}

// IsZero reports whether no proxy is configured.
func (p ProxyConfig) IsZero() bool {
	return p.HTTP == "" && p.HTTPS == ""
}

// ProxyFunc returns a function suitable for http.Transport.Proxy.
func (p ProxyConfig) ProxyFunc() func(*http.Request) (*url.URL, error) {
	fn := (&httpproxy.Config{
		HTTPProxy:  p.HTTP,
		HTTPSProxy: p.HTTPS,
		NoProxy:    p.NoProxy,
	}).ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}

func newTransport(p *ProxyConfig) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if p != nil {
		t.Proxy = p.ProxyFunc()
	}
	return t
}
