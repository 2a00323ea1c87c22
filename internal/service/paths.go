package service

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// resolveLocal joins a conflict root onto a local synchronization root,
// rejecting roots whose relative segments escape the tree via "..". The
// returned path is always inside root.
func resolveLocal(root, rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %q is absolute", ErrPathEscapesRoot, rel)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesRoot, rel)
	}
	joined := filepath.Join(root, cleaned)

	rootClean := filepath.Clean(root)
	if joined != rootClean && !strings.HasPrefix(joined, rootClean+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves to %q", ErrPathEscapesRoot, rel, joined)
	}
	return joined, nil
}

// resolveRemote joins a conflict root onto a remote (POSIX) synchronization
// root with the same escape check. Remote endpoints always use forward
// slashes regardless of the local OS.
func resolveRemote(root, rel string) (string, error) {
	cleaned := path.Clean(rel)
	if path.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %q is absolute", ErrPathEscapesRoot, rel)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesRoot, rel)
	}
	joined := path.Join(root, cleaned)

	rootClean := path.Clean(root)
	if joined != rootClean && !strings.HasPrefix(joined, rootClean+"/") {
		return "", fmt.Errorf("%w: %q resolves to %q", ErrPathEscapesRoot, rel, joined)
	}
	return joined, nil
}

// shellQuote wraps s in single quotes for safe interpolation into a remote
// shell command line.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
