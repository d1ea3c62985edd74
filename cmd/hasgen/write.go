package main

import (
	"io"
	"os"
	"path/filepath"
)

// stdoutPath as -out sends generated source to stdout instead of a file.
const stdoutPath = "-"

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeOutput sends generated source to stdout or atomically to outPath.
func writeOutput(outPath string, stdout io.Writer, data []byte) error {
	if outPath == stdoutPath {
		_, err := stdout.Write(data)
		return err
	}
	return writeFileAtomic(outPath, data, 0o644)
}

// writeFileAtomic writes to a temporary file next to targetPath and renames it
// into place, so go build never sees a half-written accessor file. The
// temporary file is removed on every failure after it was created.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) error {
	tmp, err := createTempFile(filepath.Dir(targetPath), filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := fillTemp(tmp, tmpPath, data, perm); err != nil {
		_ = removeFile(tmpPath)
		return err
	}
	if err := renameFile(tmpPath, targetPath); err != nil {
		_ = removeFile(tmpPath)
		return err
	}
	return nil
}

// fillTemp writes data, closes the file and applies perm. The file is closed
// even when the write fails.
func fillTemp(tmp tempFile, tmpPath string, data []byte, perm os.FileMode) error {
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	switch {
	case writeErr != nil:
		return writeErr
	case closeErr != nil:
		return closeErr
	}
	return chmodFile(tmpPath, perm)
}
