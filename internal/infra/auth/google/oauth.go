package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"conectar/config"
	domainerrors "conectar/internal/domain/errors"
	"conectar/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	googleOAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	defaultScopes = "openid email profile"

	// stateTTL bounds how long a consent redirect may take before the
	// callback is rejected.
	stateTTL = 10 * time.Minute
)

// OAuthService implements the redirect-based authorization code flow against
// Google. Issued state parameters are kept in memory for CSRF validation and
// are single-use.
type OAuthService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string

	httpClient *http.Client
	verifier   service.OAuthAuthService

	stateMutex sync.Mutex
	stateStore map[string]time.Time
}

// NewOAuthService creates a Google OAuth code-flow service. The verifier is
// used to validate the ID token returned by the code exchange.
func NewOAuthService(cfg *config.Config, verifier service.OAuthAuthService) service.OAuthCodeService {
	scopes := cfg.GoogleOAuth.Scopes
	if strings.TrimSpace(scopes) == "" {
		scopes = defaultScopes
	}

	return &OAuthService{
		clientID:     cfg.GoogleOAuth.ClientID,
		clientSecret: cfg.GoogleOAuth.ClientSecret,
		redirectURI:  cfg.GoogleOAuth.RedirectURI,
		scopes:       scopes,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		verifier:     verifier,
		stateStore:   make(map[string]time.Time),
	}
}

// BuildAuthorizationURL constructs the Google consent URL with a fresh
// single-use state parameter.
func (s *OAuthService) BuildAuthorizationURL() string {
	state := s.issueState()

	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("scope", s.scopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return googleOAuthURL + "?" + params.Encode()
}

// ExchangeCode validates the state, exchanges the authorization code for
// tokens and verifies the returned ID token.
func (s *OAuthService) ExchangeCode(ctx context.Context, code, state string) (*service.OAuthUser, error) {
	if !s.consumeState(state) {
		return nil, domainerrors.ErrOAuthFailed.WrapMessage("unknown or expired state parameter")
	}

	idToken, err := s.exchangeCodeForIDToken(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.verifier.VerifyIDToken(ctx, idToken)
}

func (s *OAuthService) issueState() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	state := hex.EncodeToString(bytes)

	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	now := time.Now()
	for stored, issuedAt := range s.stateStore {
		if now.Sub(issuedAt) > stateTTL {
			delete(s.stateStore, stored)
		}
	}
	s.stateStore[state] = now

	return state
}

// consumeState reports whether the state was issued here and is still fresh.
// A matched state is removed so it cannot be replayed.
func (s *OAuthService) consumeState(state string) bool {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	issuedAt, exists := s.stateStore[state]
	if !exists {
		return false
	}
	delete(s.stateStore, state)

	return time.Since(issuedAt) <= stateTTL
}

func (s *OAuthService) exchangeCodeForIDToken(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", s.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "create token exchange request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", domainerrors.ErrOAuthFailed.WrapMessage(errors.Wrap(err, "exchange code").Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", domainerrors.ErrOAuthFailed.WrapMessage(
			errors.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body)).Error())
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		IDToken     string `json:"id_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "decode token response")
	}

	if tokenResponse.IDToken == "" {
		return "", domainerrors.ErrOAuthFailed.WrapMessage("token response carries no id_token")
	}

	return tokenResponse.IDToken, nil
}
