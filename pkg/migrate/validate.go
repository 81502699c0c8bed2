package migrate

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

var migrationFilePattern = regexp.MustCompile(`^(\d{5})_[a-z0-9_]+\.sql$`)

// ValidateSequence checks the embedded migration set: file naming, strictly
// increasing versions without duplicates or gaps, and the presence of goose
// Up/Down markers. All problems are reported at once.
func ValidateSequence() error {
	entries, err := fs.ReadDir(embedMigrations, MigrationsDir)
	if err != nil {
		return fmt.Errorf("reading embedded migrations: %w", err)
	}

	var errs []error
	versions := make([]int64, 0, len(entries))
	seen := map[int64]string{}

	for _, entry := range entries {
		name := entry.Name()
		match := migrationFilePattern.FindStringSubmatch(name)
		if match == nil {
			errs = append(errs, fmt.Errorf("migration %q does not match NNNNN_name.sql", name))
			continue
		}

		version, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil || version == 0 {
			errs = append(errs, fmt.Errorf("migration %q has invalid version prefix", name))
			continue
		}
		if prev, ok := seen[version]; ok {
			errs = append(errs, fmt.Errorf("migration version %d duplicated by %q and %q", version, prev, name))
			continue
		}
		seen[version] = name
		versions = append(versions, version)

		body, err := fs.ReadFile(embedMigrations, MigrationsDir+"/"+name)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %q: %w", name, err))
			continue
		}
		text := string(body)
		if !strings.Contains(text, "+goose Up") {
			errs = append(errs, fmt.Errorf("migration %q is missing a +goose Up section", name))
		}
		if !strings.Contains(text, "+goose Down") {
			errs = append(errs, fmt.Errorf("migration %q is missing a +goose Down section", name))
		}
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	for i, version := range versions {
		if expected := int64(i + 1); version != expected {
			errs = append(errs, fmt.Errorf("migration sequence has a gap: expected version %d, found %d", expected, version))
			break
		}
	}

	return multierr.Combine(errs...)
}
