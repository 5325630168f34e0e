package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	versionLayout = "20060102150405"
	upMarker      = "-- +goose Up"
	downMarker    = "-- +goose Down"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// MigrationFile is one goose SQL file found on disk.
type MigrationFile struct {
	Version int64
	Name    string
	Path    string
}

// ScanDir lists the SQL migrations in dir ordered by version. Files that do
// not follow the <version>_<name>.sql layout are an error.
func ScanDir(dir string) ([]MigrationFile, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	files := make([]MigrationFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected %s_name.sql)", entry.Name(), versionLayout)
		}
		version, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse version of %q: %w", entry.Name(), err)
		}
		files = append(files, MigrationFile{
			Version: version,
			Name:    match[2],
			Path:    filepath.Join(dir, entry.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks that versions are unique and that every file declares
// its Up section before its Down section. An empty directory is valid.
func ValidateDir(dir string) error {
	files, err := ScanDir(dir)
	if err != nil {
		return err
	}

	for i, file := range files {
		if i > 0 && files[i-1].Version == file.Version {
			return fmt.Errorf("duplicate migration version %d in %q and %q", file.Version, files[i-1].Path, file.Path)
		}
		if err := checkSections(file.Path); err != nil {
			return err
		}
	}
	return nil
}

func checkSections(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file %q: %w", path, err)
	}
	body := string(raw)
	up := strings.Index(body, upMarker)
	down := strings.Index(body, downMarker)
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing %q", filepath.Base(path), upMarker)
	case down < 0:
		return fmt.Errorf("migration %q missing %q", filepath.Base(path), downMarker)
	case down < up:
		return fmt.Errorf("migration %q declares Down before Up", filepath.Base(path))
	}
	return nil
}
