package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/spigell/skillsight/internal/logger"
)

const (
	// GoogleProviderID is the provider id of Google federated sign in.
	GoogleProviderID = "google.com"

	passwordResetRequest = "PASSWORD_RESET"
	// requestURI is reported to the provider as the federated sign in origin.
	requestURI = "http://localhost"
)

// FirebaseConfig configures the Firebase identity provider.
type FirebaseConfig struct {
	APIKey string
	// ProjectID enables verification of issued ID tokens when set.
	ProjectID string
	// Endpoint overrides the Identity Toolkit endpoint.
	Endpoint string
}

// TokenVerifier verifies ID tokens. *fbauth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseProvider signs users in through the Firebase Identity Toolkit API.
// The session lives in memory for the life of the process.
type FirebaseProvider struct {
	logger   *zap.Logger
	service  *identitytoolkit.Service
	verifier TokenVerifier

	mu        sync.Mutex
	current   *Session
	listeners map[int]func(*Session)
	next      int
}

func NewFirebaseProvider(ctx context.Context, log *zap.Logger, cfg FirebaseConfig) (*FirebaseProvider, error) {
	p := &FirebaseProvider{
		logger:    logger.WithFields(log, zap.String("provider", "firebase")),
		listeners: map[int]func(*Session){},
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		p.logger.Warn("firebase api key is not configured, sign in is disabled")
		return p, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating identity toolkit client: %w", err)
	}
	p.service = service

	if cfg.ProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, option.WithoutAuthentication())
		if err != nil {
			return nil, fmt.Errorf("creating firebase app: %w", err)
		}

		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating firebase auth client: %w", err)
		}
		p.verifier = client
	}

	return p, nil
}

// WithVerifier replaces the ID token verifier.
func (p *FirebaseProvider) WithVerifier(v TokenVerifier) *FirebaseProvider {
	p.verifier = v
	return p
}

func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) error {
	if p.service == nil {
		return misconfigured(msgMisconfigured)
	}

	resp, err := p.service.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return err
	}

	return p.establish(ctx, resp.LocalId, resp.DisplayName, resp.Email, resp.IdToken)
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) error {
	if p.service == nil {
		return misconfigured(msgMisconfigured)
	}

	resp, err := p.service.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return err
	}

	return p.establish(ctx, resp.LocalId, resp.DisplayName, resp.Email, resp.IdToken)
}

func (p *FirebaseProvider) SignInWithIdP(ctx context.Context, providerID, idToken string) error {
	if p.service == nil {
		return misconfigured(msgMissingAPIKey)
	}

	if providerID == "" {
		providerID = GoogleProviderID
	}

	body := url.Values{}
	body.Set("id_token", idToken)
	body.Set("providerId", providerID)

	resp, err := p.service.Relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:            body.Encode(),
		RequestUri:          requestURI,
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}).Context(ctx).Do()
	if err != nil {
		return err
	}

	if resp.ErrorMessage != "" {
		return &Error{Kind: KindInvalidCredential, Code: providerCode(resp.ErrorMessage), Message: resp.ErrorMessage}
	}

	name := resp.DisplayName
	if name == "" {
		name = resp.FullName
	}

	return p.establish(ctx, resp.LocalId, name, resp.Email, resp.IdToken)
}

func (p *FirebaseProvider) SignOut(_ context.Context) error {
	p.publish(nil)
	return nil
}

func (p *FirebaseProvider) SendPasswordReset(ctx context.Context, email string) error {
	if p.service == nil {
		return misconfigured(msgMisconfigured)
	}

	_, err := p.service.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: passwordResetRequest,
		Email:       email,
	}).Context(ctx).Do()

	return err
}

func (p *FirebaseProvider) Listen(fn func(*Session)) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.listeners[id] = fn
	current := p.current.clone()
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// establish verifies the issued token when a verifier is set and publishes the session.
func (p *FirebaseProvider) establish(ctx context.Context, uid, name, email, idToken string) error {
	if p.verifier != nil {
		token, err := p.verifier.VerifyIDToken(ctx, idToken)
		if err != nil {
			return &Error{Kind: KindInvalidCredential, Code: "INVALID_ID_TOKEN", Message: "The issued ID token could not be verified.", Err: err}
		}
		uid = token.UID
	}

	session := NewSession(uid, name, email, idToken)
	p.logger.Info("signed in", logger.UserFields(session.ID, session.Email)...)
	p.publish(session)

	return nil
}

// publish stores the session and calls listeners outside the lock.
func (p *FirebaseProvider) publish(session *Session) {
	p.mu.Lock()
	p.current = session.clone()
	listeners := make([]func(*Session), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(session.clone())
	}
}

func misconfigured(message string) error {
	return &Error{Kind: KindProviderMisconfigured, Message: message}
}
