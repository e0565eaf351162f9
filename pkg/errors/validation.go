package errors

import (
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidateName validates a map name. Map names end up in output file names
// and cache keys, so path separators are rejected on top of the checks made
// by [ValidateLabel].
func ValidateName(kind, name string) error {
	if err := ValidateLabel(kind, name); err != nil {
		return err
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "%s name contains invalid characters: %q", kind, pattern)
		}
	}

	return nil
}

// ValidateLabel validates text that is only displayed, such as a feature
// name. An empty name is allowed; callers decide whether it matters.
func ValidateLabel(kind, name string) error {
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}

	return nil
}

// ValidateRedisURL validates a redis connection URL.
// It only checks the scheme; the driver parses the rest.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "redis URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "redis URL must use redis or rediss scheme")
	}

	return nil
}

// ValidateMapFile validates the name of a map file and returns its format,
// "json" or "toml", taken from the extension.
func ValidateMapFile(path string) (string, error) {
	if path == "" {
		return "", New(ErrCodeInvalidPath, "map path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return "", New(ErrCodeInvalidPath, "map path contains invalid characters")
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return "json", nil
	case strings.HasSuffix(lower, ".toml"):
		return "toml", nil
	default:
		return "", New(ErrCodeInvalidFormat, "unsupported map file %q (want .json or .toml)", path)
	}
}
