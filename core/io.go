package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ResolveArtifactPath joins name under root and rejects names that escape it.
// An absolute name is taken as-is; it was chosen explicitly by the user.
func ResolveArtifactPath(root, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("artifact name cannot be empty")
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	root = filepath.Clean(root)
	full := filepath.Clean(filepath.Join(root, name))
	if !isPathWithinRoot(root, full) {
		return "", fmt.Errorf("artifact path escapes output directory: %s", name)
	}
	return full, nil
}

// WriteArtifact writes data to path atomically.
// Behavior:
// - Creates parent directories as needed (0755 perms).
// - Writes into a temporary sibling file and renames it over path, so a failed
// run never leaves a partial artifact behind.
// - Overwrites an existing artifact (0644 perms).
func WriteArtifact(_ context.Context, path string, data []byte) error {
	log := slog.With("op", "WriteArtifact")
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	log.Debug("Creating directory", "dir", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directories for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}

	log.Debug("Writing artifact", "path", path, "bytes", len(data))
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move artifact into place at %s: %w", path, err)
	}
	return nil
}

// isPathWithinRoot checks whether target is inside root directory.
func isPathWithinRoot(root, target string) bool {
	rootClean := filepath.Clean(root)
	targetClean := filepath.Clean(target)

	rel, err := filepath.Rel(rootClean, targetClean)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." {
		return false
	}
	if strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
