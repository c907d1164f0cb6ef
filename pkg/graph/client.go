package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/socialsync-hq/fbgraph/pkg/httpclient"
)

const (
	// DefaultGraphURL is the production Graph API endpoint.
	DefaultGraphURL = "https://graph.facebook.com"

	defaultTimeout = 15 * time.Second
)

// Client issues read requests against the Graph API. It is stateless apart
// from the injected Settings, so a single client can be shared across
// goroutines.
type Client struct {
	settings *Settings
	http     httpclient.Client
}

// NewClient builds a client from settings and a transport. A nil transport
// falls back to a resty client with the default timeout; nil settings fall
// back to the production endpoint with no credentials.
func NewClient(settings *Settings, transport httpclient.Client) *Client {
	if settings == nil {
		settings = NewSettings(DefaultGraphURL, "", "")
	}
	if transport == nil {
		transport = httpclient.NewRestyClient(defaultTimeout)
	}
	return &Client{settings: settings, http: transport}
}

// Settings exposes the client's settings for runtime adjustment.
func (c *Client) Settings() *Settings { return c.settings }

// requestOptions is the per-call options bag. It passes through to the
// transport unchanged; the graph layer adds no retries or timeouts of its
// own.
type requestOptions struct {
	headers map[string]string
	params  Params
}

// RequestOption customizes a single call.
type RequestOption func(*requestOptions)

// WithHeader attaches a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithParam appends an extra query parameter after the operation's own
// parameters.
func WithParam(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.params = o.params.With(key, value)
	}
}

// WithParams appends a pre-built parameter list.
func WithParams(p Params) RequestOption {
	return func(o *requestOptions) {
		o.params = append(o.params, p...)
	}
}

// Profile fetches the authenticated user's profile (GET /me) restricted to
// the given fields.
func (c *Client) Profile(ctx context.Context, fields []string, accessToken string, opts ...RequestOption) (Response, error) {
	params := Fields(fields...).With("access_token", accessToken)
	params = WithProof(params, accessToken, c.settings.AppSecret())
	return c.get(ctx, "/me", params, opts...)
}

// MyLikes fetches the authenticated user's likes (GET /me/likes).
func (c *Client) MyLikes(ctx context.Context, accessToken string, opts ...RequestOption) (Response, error) {
	params := NewParams("access_token", accessToken)
	params = WithProof(params, accessToken, c.settings.AppSecret())
	return c.get(ctx, "/me/likes", params, opts...)
}

// Permissions fetches the permissions granted by the given user
// (GET /{userID}/permissions).
func (c *Client) Permissions(ctx context.Context, userID, accessToken string, opts ...RequestOption) (Response, error) {
	params := NewParams("access_token", accessToken)
	params = WithProof(params, accessToken, c.settings.AppSecret())
	return c.get(ctx, "/"+userID+"/permissions", params, opts...)
}

// Page fetches a page node (GET /{pageID}) restricted to the given fields.
func (c *Client) Page(ctx context.Context, pageID, accessToken string, fields []string, opts ...RequestOption) (Response, error) {
	params := Fields(fields...).With("access_token", accessToken)
	params = WithProof(params, accessToken, c.settings.AppSecret())
	return c.get(ctx, "/"+pageID, params, opts...)
}

// PageLikes fetches the like count of a page. A response without a likes
// field is a hard error, not zero.
func (c *Client) PageLikes(ctx context.Context, pageID, accessToken string) (int64, error) {
	res, err := c.Page(ctx, pageID, accessToken, []string{"likes"})
	if err != nil {
		return 0, err
	}
	return res.Int64("likes")
}

// LongLivedAccessToken exchanges a short-lived token for a long-lived one
// (GET /oauth/access_token). This call always signs, even when the app
// secret is unset.
func (c *Client) LongLivedAccessToken(ctx context.Context, accessToken string, opts ...RequestOption) (Response, error) {
	secret := c.settings.AppSecret()
	params := NewParams(
		"grant_type", "fb_exchange_token",
		"client_id", c.settings.ClientID(),
		"client_secret", secret,
	).
		With("appsecret_proof", Sign(accessToken, secret)).
		With("fb_exchange_token", accessToken)
	return c.get(ctx, "/oauth/access_token", params, opts...)
}

// get issues the request and decodes the body. Transport errors and
// non-2xx statuses propagate to the caller unchanged.
func (c *Client) get(ctx context.Context, path string, params Params, opts ...RequestOption) (Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&ro)
		}
	}
	if len(ro.params) > 0 {
		combined := make(Params, 0, len(params)+len(ro.params))
		combined = append(combined, params...)
		params = append(combined, ro.params...)
	}

	resp, err := c.http.Get(ctx, c.settings.GraphURL()+path, params.Values(), ro.headers)
	if err != nil {
		return nil, fmt.Errorf("graph get %s: %w", path, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, newAPIError(resp.StatusCode(), resp.Body())
	}
	return decodeResponse(resp.Body())
}
