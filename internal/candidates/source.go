// Package candidates loads the candidate pool from a file or a PostgreSQL
// table. Every source applies the query-side filters and the pool cap before
// returning, so the pipeline only ever sees a bounded pool.
package candidates

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/filtering"
	"github.com/spigell/cv-matcher/internal/matching"
)

// Source kinds accepted in configuration.
const (
	KindFile     = "file"
	KindPostgres = "postgres"
)

// Source supplies a filtered candidate pool. Sources are read-only.
type Source interface {
	Load(ctx context.Context, filter filtering.Config) ([]matching.CandidateProfile, error)
}

// narrow runs the standard filter steps over pool.
func narrow(ctx context.Context, log *zap.Logger, filter filtering.Config, pool []matching.CandidateProfile) ([]matching.CandidateProfile, error) {
	steps := filtering.Steps(&filter)
	out, err := filtering.Run(ctx, &filter, filtering.Deps{Logger: log}, steps, pool)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}

	for _, status := range filtering.Describe(steps) {
		log.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}
	return out, nil
}
