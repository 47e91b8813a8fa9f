package storage

import (
	"crypto/rand"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileKey is the object key of an uploaded document: the upload time in unix
// milliseconds followed by the sanitized original name.
func FileKey(now time.Time, filename string) string {
	return fmt.Sprintf("files/%d-%s", now.UnixMilli(), SanitizeFilename(filename))
}

// ImageKey is the object key of a re-encoded image.
func ImageKey(now time.Time) (string, error) {
	suffix, err := randomSuffix(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("uploads/%d-%s.jpg", now.UnixMilli(), suffix), nil
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with a dash.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeKeyChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		return "file"
	}
	return name
}

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate key suffix: %w", err)
	}
	for i := range b {
		b[i] = keyAlphabet[int(b[i])%len(keyAlphabet)]
	}
	return string(b), nil
}
