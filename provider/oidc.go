package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/sessions"
)

// federated token-exchange grant, as used by the provider's
// get-token-for-connection operation
const tokenExchangeGrantType = "urn:ietf:params:oauth:grant-type:token-exchange"
const refreshTokenType = "urn:ietf:params:oauth:token-type:refresh_token"

// SubjectTokenFunc supplies the refresh token of the currently authenticated
// primary identity, used as the subject of a federated token exchange.
type SubjectTokenFunc func(ctx context.Context) (string, error)

// OIDCProvider implements IdentityProvider against a standard OIDC issuer
// with a token-exchange extension for federated connection tokens.
type OIDCProvider struct {
	oidcProvider *oidc.Provider
	oauthConfig  *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	httpClient   *http.Client
	subjectToken SubjectTokenFunc
}

// NewOIDCProvider discovers the issuer and prepares the OAuth2 configuration.
func NewOIDCProvider(ctx context.Context, issuerURL, clientID, clientSecret, redirectURL string, subjectToken SubjectTokenFunc) (*OIDCProvider, error) {
	if subjectToken == nil {
		return nil, errors.New("[NewOIDCProvider] subjectToken func is required")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "[NewOIDCProvider] issuer discovery")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oidcProvider.Endpoint(),
		RedirectURL:  redirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "offline_access"},
	}

	return &OIDCProvider{
		oidcProvider: oidcProvider,
		oauthConfig:  oauthConfig,
		verifier:     oidcProvider.Verifier(&oidc.Config{ClientID: clientID}),
		httpClient:   http.DefaultClient,
		subjectToken: subjectToken,
	}, nil
}

// StartInteractiveLogin builds the provider authorize URL for a login or
// linking round trip.
func (p *OIDCProvider) StartInteractiveLogin(params LoginParams) (string, error) {
	opts := []oauth2.AuthCodeOption{}
	if params.Connection != "" {
		opts = append(opts, oauth2.SetAuthURLParam("connection", params.Connection))
	}
	if params.RequestedConnection != "" {
		opts = append(opts, oauth2.SetAuthURLParam("requested_connection", params.RequestedConnection))
	}
	if params.IDTokenHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("id_token_hint", params.IDTokenHint))
	}
	if params.Scope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("scope", params.Scope))
	}
	if params.ReturnTo != "" {
		opts = append(opts, oauth2.SetAuthURLParam("returnTo", params.ReturnTo))
	}
	return p.oauthConfig.AuthCodeURL(params.State, opts...), nil
}

// HandleCallback exchanges the authorization code and verifies the issued ID
// token.
func (p *OIDCProvider) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	oauth2Token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "[HandleCallback] code exchange")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("[HandleCallback] no ID token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrap(err, "[HandleCallback] ID token verification")
	}

	return &CallbackResult{
		Subject:    idToken.Subject,
		RawIDToken: rawIDToken,
		TokenSet: sessions.TokenSet{
			IDToken:      rawIDToken,
			AccessToken:  oauth2Token.AccessToken,
			RefreshToken: oauth2Token.RefreshToken,
			ExpiresAt:    oauth2Token.Expiry,
		},
	}, nil
}

// RefreshIdentityToken runs a refresh-token grant and returns the freshly
// issued identity token.
func (p *OIDCProvider) RefreshIdentityToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.New("[RefreshIdentityToken] refresh token is required")
	}

	tokenSource := p.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	oauth2Token, err := tokenSource.Token()
	if err != nil {
		return "", errors.Wrap(err, "[RefreshIdentityToken] refresh grant")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return "", errors.New("[RefreshIdentityToken] no ID token in refresh response")
	}
	return rawIDToken, nil
}

// GetAccessTokenForConnection performs the federated token exchange for one
// connection. An unlinked connection maps to ErrNotLinked; any other provider
// failure is returned as-is for the caller to classify.
func (p *OIDCProvider) GetAccessTokenForConnection(ctx context.Context, connectionID string) (ConnectionToken, error) {
	subjectToken, err := p.subjectToken(ctx)
	if err != nil {
		return ConnectionToken{}, errors.Wrap(err, "[GetAccessTokenForConnection] subject token")
	}

	form := url.Values{
		"grant_type":         {tokenExchangeGrantType},
		"subject_token_type": {refreshTokenType},
		"subject_token":      {subjectToken},
		"connection":         {connectionID},
		"client_id":          {p.oauthConfig.ClientID},
		"client_secret":      {p.oauthConfig.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.oauthConfig.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return ConnectionToken{}, errors.Wrap(err, "[GetAccessTokenForConnection] build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ConnectionToken{}, errors.Wrap(err, "[GetAccessTokenForConnection] token endpoint")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var providerErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&providerErr)

		// The provider reports a connection with no linked identity as an
		// invalid grant; gate probes for unconnected services hit this path
		// routinely.
		if providerErr.Error == "invalid_grant" || providerErr.Error == "access_denied" {
			return ConnectionToken{}, apperrors.ErrNotLinked
		}
		return ConnectionToken{}, errors.Errorf("[GetAccessTokenForConnection] token exchange failed: %s %s", providerErr.Error, providerErr.Description)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return ConnectionToken{}, errors.Wrap(err, "[GetAccessTokenForConnection] decode response")
	}

	return ConnectionToken{
		Token:     tokenResp.AccessToken,
		ExpiresIn: time.Duration(tokenResp.ExpiresIn) * time.Second,
	}, nil
}
