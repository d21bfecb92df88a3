package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xeptore/tidewave/httputil"
)

// RefreshToken exchanges the stored refresh token for a fresh access token and
// persists the result. Returns ErrUnauthorized when the refresh token itself
// is no longer accepted and a new login is required.
func (a *Auth) RefreshToken(ctx context.Context, logger zerolog.Logger) error {
	newCreds, err := a.refreshToken(ctx, logger)
	if nil != err {
		return fmt.Errorf("refresh token: %w", err)
	}

	if err := a.SetCredentials(*newCreds); nil != err {
		logger.Error().Err(err).Msg("Failed to persist refreshed credentials")
		return fmt.Errorf("persist refreshed credentials: %v", err)
	}

	return nil
}

func (a *Auth) refreshToken(ctx context.Context, logger zerolog.Logger) (creds *Credentials, err error) {
	reqURL, err := url.JoinPath(authBaseURL, "/token")
	if nil != err {
		logger.Error().Err(err).Msg("Failed to join base URL and token path")
		return nil, fmt.Errorf("join base URL and token path: %v", err)
	}

	existing := a.credentials.Load()
	if existing.RefreshToken == "" {
		return nil, ErrUnauthorized
	}

	id, secret := clientID, clientSecret
	if existing.IsPKCE {
		id, secret = clientIDPKCE, clientSecretPKCE
	}

	reqParams := make(url.Values, 4)
	reqParams.Add("client_id", id)
	reqParams.Add("refresh_token", existing.RefreshToken)
	reqParams.Add("grant_type", "refresh_token")
	reqParams.Add("scope", scopes)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBufferString(reqParams.Encode()))
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create refresh token request")
		return nil, fmt.Errorf("create refresh token request: %w", err)
	}

	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("Accept", "application/json")
	req.Header.Add(
		"Authorization",
		"Basic "+base64.StdEncoding.Strict().EncodeToString([]byte(id+":"+secret)),
	)

	client := http.Client{Timeout: 5 * time.Second} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to issue refresh token request")
		return nil, fmt.Errorf("issue refresh token request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close response body")
			err = errors.Join(err, fmt.Errorf("close response body: %v", closeErr))
		}
	}()

	switch code := resp.StatusCode; code {
	case http.StatusOK:
	case http.StatusUnauthorized:
		respBytes, err := io.ReadAll(resp.Body)
		if nil != err {
			logger.Error().Err(err).Msg("Failed to read 401 response body")
			return nil, fmt.Errorf("read 401 response body: %w", err)
		}

		if ok, err := httputil.IsTokenExpiredResponse(respBytes); nil != err {
			logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to check if 401 response is token expired")
			return nil, fmt.Errorf("check if 401 response is token expired: %v", err)
		} else if ok {
			return nil, ErrUnauthorized
		}

		if ok, err := httputil.IsTokenInvalidResponse(respBytes); nil != err {
			logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to check if 401 response is token invalid")
			return nil, fmt.Errorf("check if 401 response is token invalid: %w", err)
		} else if ok {
			return nil, ErrUnauthorized
		}

		logger.Error().Bytes("response_body", respBytes).Msg("Unexpected 401 response")

		return nil, fmt.Errorf("received unknown 401 response with body: %s", string(respBytes))
	case http.StatusBadRequest:
		respBytes, err := io.ReadAll(resp.Body)
		if nil != err {
			logger.Error().Err(err).Msg("Failed to read 400 response body")
			return nil, fmt.Errorf("read 400 response body: %w", err)
		}

		var respBody struct {
			Status           int    `json:"status"`
			Error            string `json:"error"`
			SubStatus        int    `json:"sub_status"`
			ErrorDescription string `json:"error_description"`
		}
		if err := json.Unmarshal(respBytes, &respBody); nil != err {
			logger.Error().Err(err).Msg("Failed to decode 400 response body")
			return nil, fmt.Errorf("decode 400 response body: %v", err)
		}

		if respBody.Error == "invalid_grant" {
			return nil, ErrUnauthorized
		}

		logger.
			Error().
			Int("status", respBody.Status).
			Str("error", respBody.Error).
			Int("sub_status", respBody.SubStatus).
			Str("error_description", respBody.ErrorDescription).
			Msg("Unexpected 400 response")

		return nil, fmt.Errorf("received unknown 400 response with body: %s", string(respBytes))
	default:
		respBytes, err := io.ReadAll(resp.Body)
		if nil != err {
			logger.Error().Err(err).Int("status_code", code).Msg("Failed to read response body")
			return nil, fmt.Errorf("read response body: %w", err)
		}

		logger.Error().Int("status_code", code).Bytes("response_body", respBytes).Msg("Unexpected response status code")

		return nil, fmt.Errorf("unexpected status code %d with body: %s", code, string(respBytes))
	}

	respBytes, err := io.ReadAll(resp.Body)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to read 200 response body")
		return nil, fmt.Errorf("read 200 response body: %w", err)
	}

	var respBody struct {
		TokenType   string `json:"token_type"`
		AccessToken string `json:"access_token"` //nolint:gosec
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to decode 200 response body")
		return nil, fmt.Errorf("decode 200 response body: %v", err)
	}

	expiresAt, err := extractExpiresAt(respBody.AccessToken)
	if nil != err {
		expiresAt = time.Now().Add(time.Duration(respBody.ExpiresIn) * time.Second).UTC()
	}

	return &Credentials{
		TokenType:    respBody.TokenType,
		Token:        respBody.AccessToken,
		RefreshToken: existing.RefreshToken,
		ExpiresAt:    expiresAt,
		CountryCode:  existing.CountryCode,
		IsPKCE:       existing.IsPKCE,
	}, nil
}
