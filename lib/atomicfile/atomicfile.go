// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile replaces files so that readers never observe a
// partial write. Content goes to a temporary file in the destination's
// directory, is fsynced, and is renamed over the destination. A crash at
// any point leaves either the old file or the new file, never a mix.
package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Write atomically replaces path with data. The parent directory must
// already exist.
func Write(path string, data []byte, perm os.FileMode) error {
	directory := filepath.Dir(path)
	file, err := os.CreateTemp(directory, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	temporaryPath := file.Name()

	// Write, chmod, sync, close. If any step fails, remove the
	// temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file for %s: %w", path, err)
	}
	if err := file.Chmod(perm); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("setting mode on temporary file for %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary file for %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary file for %s: %w", path, err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming %s into place: %w", path, err)
	}
	syncDirectory(directory)
	return nil
}

// Move renames source over destination. Both must be on the same
// filesystem. There is no copy fallback: only rename replaces a file
// atomically.
func Move(source, destination string) error {
	if err := os.Rename(source, destination); err != nil {
		return fmt.Errorf("moving %s to %s: %w", source, destination, err)
	}
	syncDirectory(filepath.Dir(destination))
	return nil
}

// Remove deletes path. Idempotent: returns nil when the file does not
// exist.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// syncDirectory flushes directory metadata so a completed rename
// survives power loss. Failures are ignored: the rename itself already
// happened.
func syncDirectory(directory string) {
	handle, err := os.Open(directory)
	if err != nil {
		return
	}
	handle.Sync()
	handle.Close()
}
