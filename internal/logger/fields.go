package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldRunID identifies a single pipeline invocation.
	FieldRunID = "run_id"
	// FieldStage names the pipeline stage emitting the entry.
	FieldStage = "stage"
	// FieldCandidateID is attached to every per-candidate entry.
	FieldCandidateID = "candidate_id"
	// FieldBatch is the zero-based deep-analysis batch index.
	FieldBatch = "batch"
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
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns standard zap fields that describe the AI provider and model.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the common AI fields to the provided logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// PipelineFields returns the run and stage fields of a pipeline log entry.
func PipelineFields(runID, stage string) []zap.Field {
	return StringFields(
		StringField{Key: FieldRunID, Value: runID},
		StringField{Key: FieldStage, Value: stage},
	)
}

// WithStage attaches run and stage fields to the provided logger.
func WithStage(logger *zap.Logger, runID, stage string) *zap.Logger {
	return WithFields(logger, PipelineFields(runID, stage)...)
}

// Candidate is a shorthand for the candidate id field.
func Candidate(id string) zap.Field {
	return zap.String(FieldCandidateID, id)
}

// Batch is a shorthand for the batch index field.
func Batch(index int) zap.Field {
	return zap.Int(FieldBatch, index)
}
