// Package scaffold writes a starter sortvis.yml.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dyluth/sortvis/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// Initialize writes sortvis.yml into dir and returns its path. An existing
// file is only replaced when force is set.
func Initialize(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.DefaultFile)

	if !force {
		if err := CheckExisting(dir); err != nil {
			return "", err
		}
	}

	content, err := templatesFS.ReadFile("templates/sortvis.yml.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to read sortvis.yml template: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	// The written file must load exactly as the CLI will load it
	if _, err := config.Load(path); err != nil {
		return "", fmt.Errorf("created %s is not a valid configuration: %w", path, err)
	}

	return path, nil
}

// CheckExisting returns an error if dir already holds a sortvis.yml.
func CheckExisting(dir string) error {
	path := filepath.Join(dir, config.DefaultFile)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: %s\n\nUse 'sortvis init --force' to overwrite it", path)
	}
	return nil
}

// PrintSuccess prints the success message with next steps
func PrintSuccess(w io.Writer, path string) {
	fmt.Fprintf(w, "\n✅ Created %s\n", path)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "  1. Adjust the element count and delays in sortvis.yml")
	fmt.Fprintln(w, "  2. Run 'sortvis list' to see the available algorithms")
	fmt.Fprintln(w, "  3. Run 'sortvis run' to watch one sort")
}
