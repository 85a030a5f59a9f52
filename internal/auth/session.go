package auth

import "strings"

const anonymousName = "User"

// Session is the signed in user as seen by the rest of the client.
type Session struct {
	ID    string
	Name  string
	Email string
	// IDToken is sent to the backend as a bearer credential.
	IDToken string
}

// NewSession builds a session from provider data. The display name falls back
// to the email and then to a generic name.
func NewSession(id, displayName, email, idToken string) *Session {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = strings.TrimSpace(email)
	}
	if name == "" {
		name = anonymousName
	}

	return &Session{
		ID:      id,
		Name:    name,
		Email:   email,
		IDToken: idToken,
	}
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
