package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const migrationTemplate = `-- +goose Up

-- +goose Down
`

// CreateSQLMigration scaffolds the next sequential migration file in dir.
// This is a development helper; the runtime only ever reads the embedded set.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	if !regexpSafeName(name) {
		return "", fmt.Errorf("name %q may only contain lowercase letters, digits and underscores", name)
	}

	next, err := nextVersion(dir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("%05d_%s.sql", next, name))
	if err := os.WriteFile(path, []byte(migrationTemplate), 0o644); err != nil {
		return "", fmt.Errorf("writing migration file: %w", err)
	}
	return path, nil
}

func nextVersion(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading migrations dir: %w", err)
	}

	var max int64
	for _, entry := range entries {
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		if version > max {
			max = version
		}
	}
	return max + 1, nil
}

func regexpSafeName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
