package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/xeptore/tidewave/pkce"
)

func pkceOAuthConfig() oauth2.Config {
	//nolint:exhaustruct
	return oauth2.Config{
		ClientID: clientIDPKCE,
		Endpoint: oauth2.Endpoint{
			AuthURL:   pkceAuthURL,
			TokenURL:  authBaseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: pkceRedirect,
		Scopes:      strings.Split(scopes, " "),
	}
}

// PKCELoginURL returns the browser URL for a PKCE login. The user logs in,
// lands on an "Oops" page, and hands its URL to CompletePKCELogin.
func (a *Auth) PKCELoginURL(ch *pkce.Challenge) string {
	conf := pkceOAuthConfig()

	return conf.AuthCodeURL(
		"",
		oauth2.SetAuthURLParam("code_challenge", ch.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.Method),
		oauth2.SetAuthURLParam("client_unique_key", ch.ClientUniqueKey),
		oauth2.SetAuthURLParam("appMode", "android"),
		oauth2.SetAuthURLParam("lang", "EN"),
		oauth2.SetAuthURLParam("restrict_signup", "true"),
	)
}

// CompletePKCELogin extracts the one-time code from the redirect URL the user
// pasted, exchanges it for tokens, and persists the resulting credentials.
func (a *Auth) CompletePKCELogin(
	ctx context.Context,
	ch *pkce.Challenge,
	redirectURL string,
) (*Credentials, error) {
	code, err := extractAuthorizationCode(redirectURL)
	if nil != err {
		return nil, err
	}

	conf := pkceOAuthConfig()
	token, err := conf.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", ch.Verifier),
		oauth2.SetAuthURLParam("client_unique_key", ch.ClientUniqueKey),
		oauth2.SetAuthURLParam("scope", scopes),
	)
	if nil != err {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf(
				"token exchange rejected with status %d: %s",
				retrieveErr.Response.StatusCode,
				string(retrieveErr.Body),
			)
		}

		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	expiresAt, err := extractExpiresAt(token.AccessToken)
	if nil != err {
		expiresAt = token.Expiry.UTC()
	}

	creds := &Credentials{
		TokenType:    token.TokenType,
		Token:        token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
		CountryCode:  "",
		IsPKCE:       true,
	}
	if err := a.SetCredentials(*creds); nil != err {
		return nil, err
	}

	return creds, nil
}

func extractAuthorizationCode(redirectURL string) (string, error) {
	if !strings.HasPrefix(redirectURL, "https://") {
		return "", fmt.Errorf("redirect URL looks wrong: %s", redirectURL)
	}

	u, err := url.Parse(redirectURL)
	if nil != err {
		return "", fmt.Errorf("failed to parse redirect URL: %v", err)
	}

	code := u.Query().Get("code")
	if code == "" {
		return "", errors.New("redirect URL carries no authorization code")
	}

	return code, nil
}
