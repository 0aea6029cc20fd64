package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"
	"github.com/mbolis/tailor-intake/auth"
	"github.com/mbolis/tailor-intake/config"
	"github.com/mbolis/tailor-intake/log"
	"github.com/mbolis/tailor-intake/store"
)

// RefreshTTL bounds how long a refresh token can be redeemed.
const RefreshTTL = 365 * 24 * time.Hour

type credentialsVerifier struct {
	admins *store.Admins
}

func CredentialsVerifier(admins *store.Admins) oauth.CredentialsVerifier {
	return &credentialsVerifier{admins}
}

func NewBearerServer(admins *store.Admins, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(admins), nil)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	err := cs.admins.Verify(r.Context(), username, password)
	if err != nil && !errors.Is(err, store.ErrBadCredentials) {
		log.Errorf("login.verify: %s", err)
	}
	return err
}
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	return cs.admins.StoreToken(context.Background(), credential, tokenID, refreshTokenID, RefreshTTL)
}
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	err := cs.admins.ConsumeToken(context.Background(), credential, tokenID, refreshTokenID)
	if err != nil {
		log.Debugf("refresh.validate: %s", err)
		return errors.New("could not refresh")
	}
	return nil
}
func (*credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{"roles": auth.RoleAdmin}, nil
}
func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}
func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
