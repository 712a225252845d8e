package candidates

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/filtering"
	"github.com/spigell/cv-matcher/internal/matching"
)

// File reads a JSON array of candidate profiles.
type File struct {
	path   string
	logger *zap.Logger
}

// NewFile creates a file-backed Source.
func NewFile(path string, logger *zap.Logger) *File {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{path: path, logger: logger}
}

// Load implements Source.
func (f *File) Load(ctx context.Context, filter filtering.Config) ([]matching.CandidateProfile, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates file: %w", err)
	}

	var pool []matching.CandidateProfile
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("decoding candidates file %q: %w", f.path, err)
	}

	f.logger.Info("candidates loaded", zap.String("path", f.path), zap.Int("count", len(pool)))

	return narrow(ctx, f.logger, filter, pool)
}
