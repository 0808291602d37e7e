package telemetry

import (
	"net/url"
	"strings"
)

var sensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"authorization",
}

// RedactValue masks the value if the key is sensitive.
func RedactValue(key, value string) string {
	lower := strings.ToLower(key)
	for _, needle := range sensitiveKeys {
		if strings.Contains(lower, needle) {
			return "***"
		}
	}
	return value
}

// RedactURL masks the password in a URL's user info.
func RedactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.User == nil {
		return raw
	}
	if _, hasPassword := parsed.User.Password(); hasPassword {
		parsed.User = url.UserPassword(parsed.User.Username(), "redacted")
	}
	return parsed.String()
}
