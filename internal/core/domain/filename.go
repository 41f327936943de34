package domain

import (
	"fmt"
	"strings"
)

// SanitizeFilename reduces a client-supplied name to its base name.
// Both slash and backslash separators are stripped so that browser uploads
// from any platform map to a flat name. Empty results, "." and ".." are
// rejected with ErrInvalidName.
func SanitizeFilename(name string) (string, error) {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSpace(base)

	if base == "" || base == "." || base == ".." || strings.ContainsRune(base, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return base, nil
}
