package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRequestID identifies one form submission across log entries.
	FieldRequestID = "request_id"
	// FieldClassifier is the classifier backend, e.g. forest or gemini.
	FieldClassifier = "classifier"
	// FieldModel is the artifact path or remote model name.
	FieldModel = "model"
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

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ClassifierFields describes the classifier serving predictions.
func ClassifierFields(classifier, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldClassifier, Value: classifier},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithClassifier attaches ClassifierFields to logger.
func WithClassifier(logger *zap.Logger, classifier, model string) *zap.Logger {
	return WithFields(logger, ClassifierFields(classifier, model)...)
}

// WithRequest attaches the submission id to logger.
func WithRequest(logger *zap.Logger, requestID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRequestID, Value: requestID})...)
}
