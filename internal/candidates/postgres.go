package candidates

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/filtering"
	"github.com/spigell/cv-matcher/internal/matching"
)

const selectCandidates = `SELECT
	id::text AS id,
	COALESCE(name, '') AS name,
	COALESCE(skills_raw, '') AS skills_raw,
	years_experience::float8 AS years_experience,
	COALESCE(seniority_level, '') AS seniority_level,
	COALESCE(location, '') AS location,
	COALESCE(sector, '') AS sector,
	prior_score::float8 AS prior_score,
	COALESCE(current_title, '') AS current_title,
	COALESCE(summary, '') AS summary,
	COALESCE(salary_expectation, '') AS salary_expectation
FROM candidates`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads candidates from the candidates table. It never writes.
type Postgres struct {
	db     querier
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{db: pool, pool: pool, logger: logger}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Load implements Source. Filters and the cap run in SQL; the filter steps
// then re-check the rows so both sources log the same telemetry.
func (p *Postgres) Load(ctx context.Context, filter filtering.Config) ([]matching.CandidateProfile, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	sql, args := buildQuery(filter)
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}

	pool, err := pgx.CollectRows(rows, pgx.RowToStructByName[matching.CandidateProfile])
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidates: %w", err)
	}

	p.logger.Info("candidates loaded", zap.String("source", KindPostgres), zap.Int("count", len(pool)))

	return narrow(ctx, p.logger, filter, pool)
}

// buildQuery renders the filtered select. Unknown location and experience
// pass the filters.
func buildQuery(filter filtering.Config) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if loc := strings.TrimSpace(filter.Location); loc != "" && filter.Enabled("location") {
		where = append(where, fmt.Sprintf(`(location IS NULL OR location = '' OR location ILIKE %s ESCAPE '\')`, arg(likePattern(loc))))
	}
	if sector := strings.TrimSpace(filter.Sector); sector != "" && filter.Enabled("sector") {
		where = append(where, fmt.Sprintf("lower(sector) = lower(%s)", arg(sector)))
	}
	if filter.MinExperience != nil && filter.Enabled("min_experience") {
		where = append(where, fmt.Sprintf("(years_experience IS NULL OR years_experience >= %s)", arg(*filter.MinExperience)))
	}

	var b strings.Builder
	b.WriteString(selectCandidates)
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, "\n  AND "))
	}
	b.WriteString("\nORDER BY id\nLIMIT ")
	b.WriteString(arg(filter.Cap()))

	return b.String(), args
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
