package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// Runner applies the goose files of one directory to one database. Files are
// checked with ValidateDir before goose ever parses them.
type Runner struct {
	provider *goose.Provider
	logg     *logger.Logger
}

// NewRunner binds dir to db. The shipped files are Postgres SQL; other
// dialects are only useful with their own directory.
func NewRunner(db *sql.DB, dialect goose.Dialect, dir string, logg *logger.Logger) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if err := ValidateDir(dir); err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(dialect, db, os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("goose provider for %q: %w", dir, err)
	}
	return &Runner{provider: provider, logg: logg}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	r.logResults(ctx, results, err)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Down rolls back the newest applied migration.
func (r *Runner) Down(ctx context.Context) error {
	result, err := r.provider.Down(ctx)
	var results []*goose.MigrationResult
	if result != nil {
		results = append(results, result)
	}
	r.logResults(ctx, results, err)
	if err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// Version returns the newest applied version, 0 on a fresh database.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get db version: %w", err)
	}
	return current, nil
}

// Status reports every known migration as applied or pending.
func (r *Runner) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	status, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	return status, nil
}

// ToVersion migrates up or down until targetVersion is the newest applied
// one. The target must be 0 or a version present in the directory.
func (r *Runner) ToVersion(ctx context.Context, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected %s): %w", targetVersion, versionLayout, err)
	}
	if target != 0 && !r.knows(target) {
		return fmt.Errorf("unknown migration version %d", target)
	}

	current, err := r.Version(ctx)
	if err != nil {
		return err
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil
	case current < target:
		results, err = r.provider.UpTo(ctx, target)
	default:
		results, err = r.provider.DownTo(ctx, target)
	}
	r.logResults(ctx, results, err)
	if err != nil {
		return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
	}
	return nil
}

func (r *Runner) knows(version int64) bool {
	for _, source := range r.provider.ListSources() {
		if source.Version == version {
			return true
		}
	}
	return false
}

// logResults writes one entry per migration that ran. A partial failure
// still reports the migrations applied before it.
func (r *Runner) logResults(ctx context.Context, results []*goose.MigrationResult, err error) {
	if r.logg == nil {
		return
	}
	var partial *goose.PartialError
	if errors.As(err, &partial) {
		results = append(results, partial.Applied...)
		if partial.Failed != nil {
			r.logg.Error(r.resultContext(ctx, partial.Failed), "migration failed", partial.Err)
		}
	}
	for _, result := range results {
		r.logg.Info(r.resultContext(ctx, result), "migration applied")
	}
}

func (r *Runner) resultContext(ctx context.Context, result *goose.MigrationResult) context.Context {
	fields := map[string]any{
		"direction":   result.Direction,
		"duration_ms": result.Duration.Milliseconds(),
		"empty":       result.Empty,
	}
	if result.Source != nil {
		fields["version"] = result.Source.Version
		fields["file"] = filepath.Base(result.Source.Path)
	}
	return r.logg.WithFields(ctx, fields)
}
