package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var slugInvalidRe = regexp.MustCompile(`[^a-z0-9]+`)

const migrationTemplate = `-- %[1]s
-- +goose Up
-- +goose StatementBegin

-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin

-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration named after name and
// returns its path. The version is the current UTC second, bumped past the
// newest file already in dir.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := migrationSlug(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	existing, err := ScanDir(dir)
	if err != nil {
		return "", err
	}
	version := nextVersion(time.Now().UTC(), existing)
	path := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, slug))

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	if _, err := fmt.Fprintf(file, migrationTemplate, slug); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close migration %q: %w", path, err)
	}
	return path, nil
}

func migrationSlug(name string) string {
	slug := slugInvalidRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(slug, "_")
}

func nextVersion(now time.Time, existing []MigrationFile) int64 {
	candidate, _ := strconv.ParseInt(now.Format(versionLayout), 10, 64)
	if len(existing) == 0 {
		return candidate
	}
	latest := existing[len(existing)-1].Version
	if candidate > latest {
		return candidate
	}
	at, err := time.Parse(versionLayout, strconv.FormatInt(latest, 10))
	if err != nil {
		return latest + 1
	}
	bumped, _ := strconv.ParseInt(at.Add(time.Second).Format(versionLayout), 10, 64)
	return bumped
}
