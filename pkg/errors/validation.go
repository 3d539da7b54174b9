package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// wrapperNameRegex matches identifiers the repair automaton can recognize
// as wrapper-call names (ASCII identifier characters plus $).
var wrapperNameRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidateWrapperName validates a wrapper-call name from configuration.
// Names that are not plain identifiers can never match during scanning, so
// they are rejected up front instead of being silently dead config.
func ValidateWrapperName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "wrapper name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidConfig, "wrapper name too long (max 64 characters)")
	}

	if !wrapperNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "invalid wrapper name: %q", name)
	}

	return nil
}

// Cache backend names accepted in configuration.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// ValidateCacheBackend validates a cache backend name from configuration.
func ValidateCacheBackend(backend string) error {
	switch backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
		return nil
	}
	return New(ErrCodeInvalidConfig, "unknown cache backend %q (expected file, redis or none)", backend)
}

// ValidateListenAddr validates a host:port listen address for the serve
// command. The host may be empty (all interfaces); the port must be given.
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "listen address cannot be empty")
	}

	for _, r := range addr {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "listen address contains invalid characters")
		}
	}

	i := strings.LastIndex(addr, ":")
	if i < 0 || i == len(addr)-1 {
		return New(ErrCodeInvalidConfig, "listen address %q must include a port", addr)
	}

	for _, r := range addr[i+1:] {
		if r < '0' || r > '9' {
			return New(ErrCodeInvalidConfig, "invalid port in listen address %q", addr)
		}
	}

	return nil
}
