// Package tidal is an unofficial client for the TIDAL web API. It wraps the
// documented and undocumented v1/v2 REST endpoints, deserializes their JSON
// into typed records, and resolves playable stream manifests.
package tidal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/xeptore/tidewave/auth"
	"github.com/xeptore/tidewave/cache"
	"github.com/xeptore/tidewave/config"
	"github.com/xeptore/tidewave/pkce"
	"github.com/xeptore/tidewave/result"
)

const (
	defaultAPIBaseURL     = "https://api.tidal.com/v1/"
	defaultOpenAPIBaseURL = "https://openapi.tidal.com/v2/"
	defaultListenBaseURL  = "https://listen.tidal.com/v1/"
	imageURLFormat        = "https://resources.tidal.com/images/%s/%dx%d.jpg"
	videoURLFormat        = "https://resources.tidal.com/videos/%s/%dx%d.mp4"

	// The backend occasionally tarpits chatty clients. Keep ourselves a bit
	// below its observed tolerance.
	requestsPerSecond = 8
)

type Client struct {
	auth        *auth.Auth
	conf        config.Tidal
	http        *http.Client
	logger      zerolog.Logger
	limiter     *rate.Limiter
	albumsCache *cache.Loader[*Album]
	genresCache *cache.Loader[[]Genre]

	// refresh exchanges the stored refresh token for a fresh access token.
	refresh func(context.Context) error

	apiV1BaseURL   string
	openAPIBaseURL string
	listenBaseURL  string

	sessionID   string
	countryCode string
	userID      int64
}

func NewClient(logger zerolog.Logger, conf config.Tidal, store auth.Store) (*Client, error) {
	a, err := auth.New(store)
	if nil != err {
		return nil, fmt.Errorf("failed to create auth: %v", err)
	}

	c := &Client{
		auth:   a,
		conf:   conf,
		logger: logger,
		// Timeouts are enforced per call via context so that page, paged, and
		// stream requests can each carry their configured budget.
		http:        &http.Client{}, //nolint:exhaustruct
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		albumsCache: cache.NewLoader[*Album](1000),
		genresCache: cache.NewLoader[[]Genre](1),
		refresh:     nil,

		apiV1BaseURL:   defaultAPIBaseURL,
		openAPIBaseURL: defaultOpenAPIBaseURL,
		listenBaseURL:  defaultListenBaseURL,

		sessionID:   "",
		countryCode: a.Credentials().CountryCode,
		userID:      0,
	}
	c.refresh = func(ctx context.Context) error { return c.auth.RefreshToken(ctx, c.logger) }

	return c, nil
}

func (c *Client) Quality() string {
	return c.conf.Quality
}

func (c *Client) SetQuality(q string) {
	c.conf.Quality = q
}

// InitiateLoginFlow starts a device-code login. Callers show the returned link
// to the user and wait on the channel for the outcome.
func (c *Client) InitiateLoginFlow(
	ctx context.Context,
) (*auth.LoginLink, <-chan result.Of[auth.Credentials], error) {
	return c.auth.InitiateLoginFlow(ctx, c.logger)
}

// PKCELoginURL returns the browser URL for a PKCE login along with the
// challenge that must be handed back to CompletePKCELogin.
func (c *Client) PKCELoginURL() (string, *pkce.Challenge, error) {
	ch, err := pkce.NewChallenge()
	if nil != err {
		return "", nil, err
	}

	return c.auth.PKCELoginURL(ch), ch, nil
}

func (c *Client) CompletePKCELogin(ctx context.Context, ch *pkce.Challenge, redirectURL string) error {
	if _, err := c.auth.CompletePKCELogin(ctx, ch, redirectURL); nil != err {
		return fmt.Errorf("failed to complete PKCE login: %w", err)
	}

	return c.ConnectSession(ctx)
}

// LoadOAuthSession installs credentials obtained elsewhere (a previous run's
// serialized blob) and validates them against the sessions endpoint.
func (c *Client) LoadOAuthSession(ctx context.Context, creds auth.Credentials) error {
	if err := c.auth.SetCredentials(creds); nil != err {
		return err
	}

	return c.ConnectSession(ctx)
}

type sessionInfo struct {
	SessionID   string `json:"sessionId"`
	UserID      int64  `json:"userId"`
	CountryCode string `json:"countryCode"`
}

// ConnectSession resolves the server-side session for the current access
// token: session id, user id, and the storefront country code injected into
// every subsequent request.
func (c *Client) ConnectSession(ctx context.Context) error {
	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "sessions", nil, nil, nil)
	if nil != err {
		return fmt.Errorf("failed to get session info: %w", err)
	}

	var info sessionInfo
	if err := unmarshal(resp.Body, &info); nil != err {
		return fmt.Errorf("failed to decode session info: %v", err)
	}

	if _, err := uuid.Parse(info.SessionID); nil != err {
		return fmt.Errorf("session id %q is not a valid UUID: %v", info.SessionID, err)
	}

	c.sessionID = info.SessionID
	c.userID = info.UserID
	c.countryCode = info.CountryCode

	if err := c.auth.SetCountryCode(info.CountryCode); nil != err {
		c.logger.Warn().Err(err).Msg("Failed to persist country code")
	}

	return nil
}

func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) CountryCode() string {
	return c.countryCode
}

func (c *Client) UserID() int64 {
	return c.userID
}

// CheckLogin reports whether the current credentials are usable, probing the
// subscription endpoint like the web player does.
func (c *Client) CheckLogin(ctx context.Context) bool {
	if c.userID == 0 {
		if err := c.ConnectSession(ctx); nil != err {
			return false
		}
	}

	path := fmt.Sprintf("users/%d/subscription", c.userID)
	if _, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, path, nil, nil, nil); nil != err {
		return false
	}

	return true
}

func imageURL(id string, width, height int) string {
	return fmt.Sprintf(imageURLFormat, pathifyImageID(id), width, height)
}
