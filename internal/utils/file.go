package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory and any missing parents if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the lower-cased file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsJPEGFile checks if a file name ends in .jpg or .jpeg, ignoring case
func IsJPEGFile(filename string) bool {
	switch GetFileExtension(filename) {
	case "jpg", "jpeg":
		return true
	}
	return false
}

// Stem returns the base name of a path without its extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GenerateOutputFilename builds <outputDir>/<stem><suffix>.<format>
func GenerateOutputFilename(inputFile, outputDir, suffix, format string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s%s.%s", Stem(inputFile), suffix, format))
}

// ListJPEGFiles lists the JPEG files directly inside dir, without
// descending into subdirectories. Order follows the directory listing.
func ListJPEGFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsJPEGFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// WriteFileAtomic streams write into a temporary file next to path and
// renames it over path once write and close succeed. An existing file at
// path is replaced. On failure the temporary file is removed.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// FileExists reports whether path names a regular file, e.g. an optional
// config file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path names a directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FormatFileSize formats a byte count for the -check listing, e.g. "2.4 MB"
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
