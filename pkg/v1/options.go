package v1

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	routes     Routes
}

// Routes are the server paths for the ask, teach and knowledge endpoints.
type Routes struct {
	Ask       string
	Teach     string
	Knowledge string
}

// DefaultRoutes matches a server started with the default config.
func DefaultRoutes() Routes {
	return Routes{Ask: "/ask", Teach: "/teach", Knowledge: "/knowledge"}
}

// WithBaseURL sets the server address, e.g. http://localhost:8000.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithToken sets the bearer token sent to admin routes.
func WithToken(token string) Option {
	return func(c *clientConfig) {
		c.token = token
	}
}

// WithTimeout bounds each request. It is ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithRoutes points the client at a server with custom routes. Empty fields keep the defaults.
func WithRoutes(r Routes) Option {
	return func(c *clientConfig) {
		if r.Ask != "" {
			c.routes.Ask = r.Ask
		}
		if r.Teach != "" {
			c.routes.Teach = r.Teach
		}
		if r.Knowledge != "" {
			c.routes.Knowledge = r.Knowledge
		}
	}
}
