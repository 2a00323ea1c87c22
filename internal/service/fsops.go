package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// localFS is the filesystem surface used when applying a conflict direction
// between two local endpoints. Injected as afero.Fs so resolution logic is
// exercised against an in-memory filesystem in tests.

// copyTree makes dst an exact copy of the file or directory at src. Any
// existing dst is removed first so type changes (file↔directory) apply
// cleanly.
func copyTree(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source %q: %w", src, err)
	}

	if err = fs.RemoveAll(dst); err != nil {
		return fmt.Errorf("clear destination %q: %w", dst, err)
	}
	if err = fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination parent: %w", err)
	}

	if info.IsDir() {
		return copyDir(fs, src, dst)
	}
	return copyFile(fs, src, dst, info.Mode())
}

func copyDir(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return err
	}
	if err = fs.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("create directory %q: %w", dst, err)
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", src, err)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err = copyDir(fs, srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err = copyFile(fs, srcPath, dstPath, entry.Mode()); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fs afero.Fs, src, dst string, mode os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source %q: %w", src, err)
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create destination %q: %w", dst, err)
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}
	return nil
}

// removeTree deletes the file or directory at target. A missing target is
// not an error: the chosen side lacks the path and the other side must end
// up without it too.
func removeTree(fs afero.Fs, target string) error {
	if err := fs.RemoveAll(target); err != nil {
		return fmt.Errorf("remove %q: %w", target, err)
	}
	return nil
}

// exists reports whether target is present on fs.
func exists(fs afero.Fs, target string) (bool, error) {
	_, err := fs.Stat(target)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
