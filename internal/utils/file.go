package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imagefit/imagefit/pkg/engine"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// FormatFromPath derives the encoding format from a file name. The second
// return value is false when the extension is missing or not an image format.
func FormatFromPath(filename string) (engine.Format, bool) {
	ext := GetFileExtension(filename)
	if ext == "" {
		return "", false
	}
	f, err := engine.ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	_, ok := FormatFromPath(filename)
	return ok
}

// GenerateOutputFilename generates an output filename based on input and parameters
func GenerateOutputFilename(inputFile, outputDir, prefix, suffix, format string) string {
	baseName := filepath.Base(inputFile)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))

	if format == "" {
		format = GetFileExtension(inputFile)
		if format == "" {
			format = "jpg"
		}
	}

	outputName := fmt.Sprintf("%s%s%s.%s", prefix, nameWithoutExt, suffix, format)
	return filepath.Join(outputDir, outputName)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
