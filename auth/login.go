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

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xeptore/tidewave/result"
)

// LoginLink is what the caller shows the user during a device-code login.
type LoginLink struct {
	URL       string
	UserCode  string
	ExpiresIn time.Duration
}

var errAuthorizationPending = errors.New("device authorization is pending")

// InitiateLoginFlow starts the device-code flow. It returns the link to show
// the user and a channel that delivers the credentials (or the failure) once
// the user completes or abandons the authorization.
func (a *Auth) InitiateLoginFlow(
	ctx context.Context,
	logger zerolog.Logger,
) (*LoginLink, <-chan result.Of[Credentials], error) {
	select {
	case a.loginSem <- struct{}{}:
	default:
		return nil, nil, ErrLoginInProgress
	}

	res, err := issueAuthorizationRequest(ctx)
	if nil != err {
		<-a.loginSem
		return nil, nil, fmt.Errorf("failed to initiate login flow: %w", err)
	}

	pollCtx, cancel := context.WithTimeout(ctx, time.Duration(res.ExpiresIn+1)*time.Second)
	done := make(chan result.Of[Credentials], 1)

	go func() {
		defer func() { <-a.loginSem }()
		defer close(done)
		defer cancel()

		creds, err := a.pollAuthorization(pollCtx, logger, res)
		if nil != err {
			done <- result.Err[Credentials](err)

			return
		}

		if err := a.SetCredentials(*creds); nil != err {
			done <- result.Err[Credentials](err)

			return
		}

		done <- result.Ok(creds)
	}()

	return &LoginLink{
		URL:       res.URL,
		UserCode:  res.UserCode,
		ExpiresIn: time.Duration(res.ExpiresIn) * time.Second,
	}, done, nil
}

func (a *Auth) pollAuthorization(
	ctx context.Context,
	logger zerolog.Logger,
	res *authorizationResponse,
) (*Credentials, error) {
	interval := backoff.NewConstantBackOff(time.Duration(res.Interval) * time.Second)
	creds, err := backoff.RetryWithData(
		func() (*Credentials, error) {
			creds, err := pollToken(ctx, res.DeviceCode)
			if nil != err {
				if errors.Is(err, errAuthorizationPending) {
					return nil, err
				}

				return nil, backoff.Permanent(err)
			}

			return creds, nil
		},
		backoff.WithContext(interval, ctx),
	)
	if nil != err {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrLoginLinkExpired
		}

		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}

		logger.Error().Err(err).Msg("Device authorization polling failed")

		return nil, fmt.Errorf("failed to poll device authorization: %w", err)
	}

	return creds, nil
}

type authorizationResponse struct {
	URL        string
	UserCode   string
	DeviceCode string
	ExpiresIn  int
	Interval   int
}

func issueAuthorizationRequest(ctx context.Context) (out *authorizationResponse, err error) {
	reqURL, err := url.JoinPath(authBaseURL, "/device_authorization")
	if nil != err {
		return nil, fmt.Errorf("failed to create device authorization URL: %v", err)
	}

	reqParams := make(url.Values, 2)
	reqParams.Add("client_id", clientID)
	reqParams.Add("scope", scopes)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		reqURL,
		bytes.NewBufferString(reqParams.Encode()),
	)
	if nil != err {
		return nil, fmt.Errorf("failed to create device authorization request: %v", err)
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	client := http.Client{Timeout: 5 * time.Second} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		return nil, fmt.Errorf("failed to issue device authorization request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close response body: %v", closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if nil != err {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	var respBody struct {
		DeviceCode              string `json:"deviceCode"`
		UserCode                string `json:"userCode"`
		VerificationURI         string `json:"verificationUri"`
		VerificationURIComplete string `json:"verificationUriComplete"`
		ExpiresIn               int    `json:"expiresIn"`
		Interval                int    `json:"interval"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	linkURL := respBody.VerificationURIComplete
	if linkURL == "" {
		//nolint:exhaustruct
		u := url.URL{
			Scheme: "https",
			Host:   respBody.VerificationURI,
			Path:   respBody.UserCode,
		}
		linkURL = u.String()
	} else {
		linkURL = "https://" + linkURL
	}

	return &authorizationResponse{
		URL:        linkURL,
		UserCode:   respBody.UserCode,
		DeviceCode: respBody.DeviceCode,
		ExpiresIn:  respBody.ExpiresIn,
		Interval:   respBody.Interval,
	}, nil
}

func pollToken(ctx context.Context, deviceCode string) (creds *Credentials, err error) {
	reqURL, err := url.JoinPath(authBaseURL, "/token")
	if nil != err {
		return nil, fmt.Errorf("failed to create token URL: %v", err)
	}

	reqParams := make(url.Values, 4)
	reqParams.Add("client_id", clientID)
	reqParams.Add("scope", scopes)
	reqParams.Add("grant_type", "urn:ietf:params:oauth:grant-type:device_code")
	reqParams.Add("device_code", deviceCode)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		reqURL,
		bytes.NewBufferString(reqParams.Encode()),
	)
	if nil != err {
		return nil, fmt.Errorf("failed to create token request: %v", err)
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add(
		"Authorization",
		"Basic "+base64.StdEncoding.Strict().EncodeToString([]byte(clientID+":"+clientSecret)),
	)

	client := http.Client{Timeout: 5 * time.Second} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		return nil, fmt.Errorf("failed to issue token request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close response body: %v", closeErr))
		}
	}()

	switch code := resp.StatusCode; code {
	case http.StatusOK:
	case http.StatusBadRequest:
		respBytes, err := io.ReadAll(resp.Body)
		if nil != err {
			return nil, fmt.Errorf("failed to read response body: %v", err)
		}
		var respBody struct {
			Status           int    `json:"status"`
			Error            string `json:"error"`
			SubStatus        int    `json:"sub_status"`
			ErrorDescription string `json:"error_description"`
		}
		if err := json.Unmarshal(respBytes, &respBody); nil != err {
			return nil, fmt.Errorf("failed to decode 400 status code response body: %v", err)
		}
		if respBody.Error == "authorization_pending" {
			return nil, errAuthorizationPending
		}
		if respBody.Error == "expired_token" {
			return nil, ErrLoginLinkExpired
		}

		return nil, fmt.Errorf("unexpected 400 response with body: %s", string(respBytes))
	default:
		return nil, fmt.Errorf("unexpected status code: %d", code)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if nil != err {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}
	var respBody struct {
		TokenType    string `json:"token_type"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		return nil, fmt.Errorf("failed to decode 200 status code response body: %v", err)
	}

	expiresAt, err := extractExpiresAt(respBody.AccessToken)
	if nil != err {
		expiresAt = time.Now().Add(time.Duration(respBody.ExpiresIn) * time.Second).UTC()
	}

	return &Credentials{
		TokenType:    respBody.TokenType,
		Token:        respBody.AccessToken,
		RefreshToken: respBody.RefreshToken,
		ExpiresAt:    expiresAt,
		CountryCode:  "",
		IsPKCE:       false,
	}, nil
}
