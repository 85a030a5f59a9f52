package auth

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind classifies authentication failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredential
	KindUserNotFound
	KindEmailInUse
	KindWeakPassword
	KindNetworkError
	KindProviderMisconfigured
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredential:
		return "invalid-credential"
	case KindUserNotFound:
		return "user-not-found"
	case KindEmailInUse:
		return "email-in-use"
	case KindWeakPassword:
		return "weak-password"
	case KindNetworkError:
		return "network-error"
	case KindProviderMisconfigured:
		return "provider-misconfigured"
	default:
		return "unknown"
	}
}

// Error is returned by every Store operation that fails.
// Message is meant to be shown to the user as is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("auth %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

const (
	msgNetwork         = "Network error. Please check your internet connection."
	msgMisconfigured   = "Email/Password login is not enabled in the Firebase Console. Go to Authentication > Sign-in method to enable it."
	msgMissingEmail    = "Please enter your email address first."
	msgMissingAPIKey   = "Firebase API Key is missing. Please configure firebase.api-key-file or FIREBASE_API_KEY."
	msgUnexpected      = "An unexpected error occurred. Please check the logs for details."
	msgResetFailed     = "Failed to send password reset email."
	msgFederatedFailed = "Failed to sign in with Google"
)

type mapping struct {
	kind    Kind
	message string
}

// providerCodes maps Identity Toolkit error codes to user facing failures.
var providerCodes = map[string]mapping{
	"INVALID_LOGIN_CREDENTIALS": {KindInvalidCredential, `Invalid credentials. If you haven't created an account yet, please choose "Sign up".`},
	"INVALID_PASSWORD":          {KindInvalidCredential, "Incorrect password. Please try again or reset your password."},
	"INVALID_EMAIL":             {KindInvalidCredential, "The email address is badly formatted."},
	"INVALID_IDP_RESPONSE":      {KindInvalidCredential, "The identity provider rejected the supplied credential."},
	"EMAIL_NOT_FOUND":           {KindUserNotFound, `Account not found. Please choose "Sign up" to create a new account.`},
	"EMAIL_EXISTS":              {KindEmailInUse, "This email is already registered. Please sign in instead."},
	"WEAK_PASSWORD":             {KindWeakPassword, "Password is too weak. Please use at least 6 characters."},
	"API_KEY_INVALID":           {KindProviderMisconfigured, "Firebase Configuration Error: Invalid API Key. Please verify the firebase api key setting."},
	"CONFIGURATION_NOT_FOUND":   {KindProviderMisconfigured, "Firebase Configuration Error: Auth Domain or project ID not found."},
	"OPERATION_NOT_ALLOWED":     {KindProviderMisconfigured, msgMisconfigured},
	"PASSWORD_LOGIN_DISABLED":   {KindProviderMisconfigured, msgMisconfigured},
}

// toError converts a provider failure into *Error. fallback is used as the
// message of unmapped failures that carry no text of their own.
func toError(err error, fallback string) error {
	if err == nil {
		return nil
	}

	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		code := providerCode(apiErr.Message)
		if m, ok := providerCodes[code]; ok {
			return &Error{Kind: m.kind, Code: code, Message: m.message, Err: err}
		}

		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = fallback
		}
		return &Error{Kind: KindUnknown, Code: code, Message: msg, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Kind: KindNetworkError, Message: msgNetwork, Err: err}
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fallback
	}
	return &Error{Kind: KindUnknown, Message: msg, Err: err}
}

// providerCode extracts the leading code of messages like
// "WEAK_PASSWORD : Password should be at least 6 characters".
func providerCode(message string) string {
	code := strings.TrimSpace(message)
	if i := strings.IndexAny(code, " :"); i >= 0 {
		code = code[:i]
	}
	return code
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var authErr *Error
	return errors.As(err, &authErr) && authErr.Kind == kind
}

// Message returns the user facing text of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return msgUnexpected
}
