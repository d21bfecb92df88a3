package tidal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sethvargo/go-retry"

	"github.com/xeptore/tidewave/httputil"
)

type response struct {
	Status int
	Header http.Header
	Body   []byte
}

// request issues an authenticated request against base+path. Default query
// params (countryCode, limit) are injected and can be overridden per call.
// An expired access token is refreshed and the request retried exactly once.
func (c *Client) request(
	ctx context.Context,
	method string,
	base string,
	path string,
	params url.Values,
	form url.Values,
	headers http.Header,
) (*response, error) {
	return c.requestTimeout(
		ctx,
		time.Duration(c.conf.Timeouts.Request)*time.Second,
		method, base, path, params, form, headers,
	)
}

func (c *Client) requestTimeout(
	ctx context.Context,
	timeout time.Duration,
	method string,
	base string,
	path string,
	params url.Values,
	form url.Values,
	headers http.Header,
) (*response, error) {
	creds := c.auth.Credentials()
	if creds.Token == "" {
		return nil, ErrLoginRequired
	}

	if creds.Expired(time.Now()) {
		if err := c.refresh(ctx); nil != err {
			return nil, fmt.Errorf("failed to refresh expired token: %w", err)
		}
	}

	var out *response
	err := retry.Do(
		ctx,
		retry.WithMaxRetries(1, retry.NewConstant(time.Second)),
		func(ctx context.Context) error {
			resp, err := c.do(ctx, timeout, method, base, path, params, form, headers)
			if nil != err {
				if errors.Is(err, errTokenExpired) {
					if refreshErr := c.refresh(ctx); nil != refreshErr {
						return fmt.Errorf("failed to refresh token: %w", refreshErr)
					}

					return retry.RetryableError(err)
				}

				return err
			}

			out = resp

			return nil
		},
	)
	if nil != err {
		if errors.Is(err, errTokenExpired) {
			// The retried request still came back with an expired-token body.
			return nil, ErrUnauthorized
		}

		return nil, err
	}

	return out, nil
}

func (c *Client) do(
	ctx context.Context,
	timeout time.Duration,
	method string,
	base string,
	path string,
	params url.Values,
	form url.Values,
	headers http.Header,
) (out *response, err error) {
	if err := c.limiter.Wait(ctx); nil != err {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	reqURL, err := url.JoinPath(base, path)
	if nil != err {
		return nil, fmt.Errorf("failed to join %q and %q: %v", base, path, err)
	}

	reqParams := make(url.Values, 2+len(params))
	if c.countryCode != "" {
		reqParams.Set("countryCode", c.countryCode)
	}
	reqParams.Set("limit", strconv.Itoa(c.conf.ItemLimit))
	for k, vs := range params {
		reqParams[k] = vs
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL+"?"+reqParams.Encode(), body)
	if nil != err {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.auth.Credentials().Token)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, vs := range headers {
		req.Header[k] = vs
	}

	logger := c.logger.With().Str("method", method).Str("url", reqURL).Logger()
	logger.Trace().Msg("Issuing API request")

	resp, err := c.http.Do(req)
	if nil != err {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close response body: %v", closeErr))
		}
	}()

	respBytes, err := io.ReadAll(resp.Body)
	if nil != err {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch code := resp.StatusCode; code {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return &response{Status: code, Header: resp.Header, Body: respBytes}, nil
	case http.StatusUnauthorized:
		if ok, err := httputil.IsTokenExpiredResponse(respBytes); nil != err {
			logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to check if 401 response is token expired")
			return nil, fmt.Errorf("failed to check if 401 response is token expired: %v", err)
		} else if ok {
			return nil, errTokenExpired
		}

		if ok, err := httputil.IsTokenInvalidResponse(respBytes); nil != err {
			logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to check if 401 response is token invalid")
			return nil, fmt.Errorf("failed to check if 401 response is token invalid: %v", err)
		} else if ok {
			return nil, newAPIError(code, respBytes, ErrUnauthorized)
		}

		if ok, err := httputil.IsSessionNotFoundResponse(respBytes); nil != err {
			logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to check if 401 response is session not found")
			return nil, fmt.Errorf("failed to check if 401 response is session not found: %v", err)
		} else if ok {
			return nil, newAPIError(code, respBytes, ErrUnauthorized)
		}

		logger.Error().Bytes("response_body", respBytes).Msg("Unexpected 401 response")

		return nil, newAPIError(code, respBytes, ErrUnauthorized)
	case http.StatusNotFound, http.StatusTooManyRequests:
		return nil, newAPIError(code, respBytes, sentinelForStatus(code))
	case http.StatusForbidden:
		if ok, err := httputil.IsQueueItUpResponse(resp, respBytes); nil != err {
			logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to check if 403 response is too many requests")
			return nil, fmt.Errorf("failed to check if 403 response is too many requests: %v", err)
		} else if ok {
			return nil, newAPIError(code, respBytes, ErrTooManyRequests)
		}

		logger.Error().Bytes("response_body", respBytes).Msg("Unexpected 403 response")

		return nil, newAPIError(code, respBytes, nil)
	default:
		logger.Error().Int("status_code", code).Bytes("response_body", respBytes).Msg("Unexpected response status code")

		return nil, newAPIError(code, respBytes, nil)
	}
}

func unmarshal(b []byte, v any) error {
	if err := json.Unmarshal(b, v); nil != err {
		return fmt.Errorf("failed to decode response body: %v", err)
	}

	return nil
}

func pathifyImageID(id string) string {
	return strings.ReplaceAll(id, "-", "/")
}
