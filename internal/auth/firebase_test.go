package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type identityToolkit struct {
	t        *testing.T
	requests map[string]map[string]any
}

func newIdentityToolkit(t *testing.T) (*identityToolkit, *httptest.Server) {
	it := &identityToolkit{t: t, requests: map[string]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(it.serve))
	t.Cleanup(srv.Close)
	return it, srv
}

func (it *identityToolkit) serve(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	var body map[string]any
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &body)
	it.requests[method] = body

	w.Header().Set("Content-Type", "application/json")

	switch method {
	case "verifyPassword":
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error": {"code": 400, "message": "INVALID_LOGIN_CREDENTIALS"}}`)
			return
		}
		io.WriteString(w, `{"localId": "uid-1", "email": "ada@example.com", "displayName": "Ada", "idToken": "id-token-1"}`)
	case "signupNewUser":
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": {"code": 400, "message": "EMAIL_EXISTS"}}`)
	case "verifyAssertion":
		io.WriteString(w, `{"localId": "uid-2", "email": "grace@example.com", "fullName": "Grace Hopper", "idToken": "id-token-2"}`)
	case "getOobConfirmationCode":
		io.WriteString(w, `{"email": "ada@example.com"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestProvider(t *testing.T, endpoint string) *FirebaseProvider {
	t.Helper()
	p, err := NewFirebaseProvider(context.Background(), zap.NewNop(), FirebaseConfig{
		APIKey:   "test-key",
		Endpoint: endpoint + "/",
	})
	require.NoError(t, err)
	return p
}

func TestFirebaseSignInWithPassword(t *testing.T) {
	it, srv := newIdentityToolkit(t)
	provider := newTestProvider(t, srv.URL)

	store := NewStore(zap.NewNop(), provider)
	defer store.Close()
	require.False(t, store.Loading(), "firebase provider reports the initial state on listen")

	require.NoError(t, store.SignInWithPassword(context.Background(), "ada@example.com", "secret"))

	session := store.Current()
	require.NotNil(t, session)
	assert.Equal(t, "uid-1", session.ID)
	assert.Equal(t, "Ada", session.Name)
	assert.Equal(t, "id-token-1", session.IDToken)
	assert.Equal(t, true, it.requests["verifyPassword"]["returnSecureToken"])

	err := store.SignInWithPassword(context.Background(), "ada@example.com", "wrong")
	assert.True(t, IsKind(err, KindInvalidCredential))
	assert.Equal(t, "uid-1", store.Current().ID, "failed sign in keeps the session")

	require.NoError(t, store.SignOut(context.Background()))
	assert.Nil(t, store.Current())
}

func TestFirebaseSignUpEmailExists(t *testing.T) {
	_, srv := newIdentityToolkit(t)
	store := NewStore(zap.NewNop(), newTestProvider(t, srv.URL))
	defer store.Close()

	err := store.SignUp(context.Background(), "ada@example.com", "secret")
	assert.True(t, IsKind(err, KindEmailInUse))
	assert.Nil(t, store.Current())
}

func TestFirebaseFederatedSignIn(t *testing.T) {
	it, srv := newIdentityToolkit(t)
	store := NewStore(zap.NewNop(), newTestProvider(t, srv.URL))
	defer store.Close()

	require.NoError(t, store.SignInWithFederatedProvider(context.Background(), "", "google-id-token"))

	session := store.Current()
	require.NotNil(t, session)
	assert.Equal(t, "Grace Hopper", session.Name)
	assert.Contains(t, it.requests["verifyAssertion"]["postBody"], "providerId=google.com")
}

func TestFirebasePasswordReset(t *testing.T) {
	it, srv := newIdentityToolkit(t)
	store := NewStore(zap.NewNop(), newTestProvider(t, srv.URL))
	defer store.Close()

	require.NoError(t, store.SendPasswordReset(context.Background(), "ada@example.com"))
	assert.Equal(t, "PASSWORD_RESET", it.requests["getOobConfirmationCode"]["requestType"])
	assert.Nil(t, store.Current())
}

type fakeVerifier struct {
	uid string
	err error
}

func (v fakeVerifier) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &fbauth.Token{UID: v.uid}, nil
}

func TestFirebaseVerifiesIssuedTokens(t *testing.T) {
	_, srv := newIdentityToolkit(t)

	provider := newTestProvider(t, srv.URL).WithVerifier(fakeVerifier{uid: "verified-uid"})
	store := NewStore(zap.NewNop(), provider)
	defer store.Close()

	require.NoError(t, store.SignInWithPassword(context.Background(), "ada@example.com", "secret"))
	assert.Equal(t, "verified-uid", store.Current().ID)

	provider.WithVerifier(fakeVerifier{err: errors.New("expired")})
	require.NoError(t, store.SignOut(context.Background()))

	err := store.SignInWithPassword(context.Background(), "ada@example.com", "secret")
	assert.True(t, IsKind(err, KindInvalidCredential))
	assert.Nil(t, store.Current())
}

func TestFirebaseWithoutAPIKey(t *testing.T) {
	provider, err := NewFirebaseProvider(context.Background(), zap.NewNop(), FirebaseConfig{})
	require.NoError(t, err)

	store := NewStore(zap.NewNop(), provider)
	defer store.Close()

	err = store.SignInWithFederatedProvider(context.Background(), GoogleProviderID, "token")
	assert.True(t, IsKind(err, KindProviderMisconfigured))
	assert.Equal(t, msgMissingAPIKey, Message(err))

	err = store.SignInWithPassword(context.Background(), "ada@example.com", "secret")
	assert.True(t, IsKind(err, KindProviderMisconfigured))
}
