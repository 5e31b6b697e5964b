package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CreateMigration writes a pair of empty up/down migration files with the
// next sequential version number and returns their paths.
func CreateMigration(migrationsPath, name string) (string, string, error) {
	if err := os.MkdirAll(migrationsPath, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version, err := nextVersion(migrationsPath)
	if err != nil {
		return "", "", err
	}

	base := fmt.Sprintf("%06d_%s", version, sanitizeName(name))
	upPath := filepath.Join(migrationsPath, base+".up.sql")
	downPath := filepath.Join(migrationsPath, base+".down.sql")

	created := time.Now().UTC().Format("2006-01-02 15:04:05 MST")
	upHeader := fmt.Sprintf("-- Migration: %s\n-- Created: %s\n-- Direction: up\n\n", name, created)
	downHeader := fmt.Sprintf("-- Migration: %s\n-- Created: %s\n-- Direction: down\n\n", name, created)

	if err := os.WriteFile(upPath, []byte(upHeader), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write up migration: %w", err)
	}
	if err := os.WriteFile(downPath, []byte(downHeader), 0o644); err != nil {
		os.Remove(upPath)
		return "", "", fmt.Errorf("failed to write down migration: %w", err)
	}

	return upPath, downPath, nil
}

// ListMigrations returns the migration file names in the directory, sorted
func ListMigrations(migrationsPath string) ([]string, error) {
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// nextVersion scans the directory for the highest version prefix and
// returns the one after it. An empty directory starts at 1.
func nextVersion(migrationsPath string) (int, error) {
	files, err := ListMigrations(migrationsPath)
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, f := range files {
		parts := strings.SplitN(f, "_", 2)
		if len(parts) < 2 {
			continue
		}
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		if v > highest {
			highest = v
		}
	}
	return highest + 1, nil
}

// sanitizeName lowercases the migration name and replaces anything that is
// not alphanumeric with underscores so it is safe in a file name.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
