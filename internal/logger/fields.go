package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldUID is the structured log field key for the signed in user id.
	FieldUID = "uid"
	// FieldEmail is the structured log field key for the signed in user email.
	FieldEmail = "email"
	// FieldAnalysisID is the structured log field key for an analysis identifier.
	FieldAnalysisID = "analysis_id"
	// FieldRole is the structured log field key for the target job role.
	FieldRole = "role"
	// FieldRequestID is the structured log field key for a backend request id.
	FieldRequestID = "request_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced by a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// UserFields returns the fields describing the signed in user.
// Empty values are skipped so anonymous sessions keep log entries compact.
func UserFields(uid, email string) []zap.Field {
	return StringFields(
		StringField{Key: FieldUID, Value: uid},
		StringField{Key: FieldEmail, Value: email},
	)
}

// AnalysisFields returns the fields describing a single analysis.
func AnalysisFields(id, role string) []zap.Field {
	return StringFields(
		StringField{Key: FieldAnalysisID, Value: id},
		StringField{Key: FieldRole, Value: role},
	)
}

// WithUser attaches the user fields to the provided logger.
func WithUser(logger *zap.Logger, uid, email string) *zap.Logger {
	return WithFields(logger, UserFields(uid, email)...)
}
