package utils

import (
	"os"
	"strconv"
	"strings"
)

const defaultServiceName = "launchlist"

// EnvString returns the trimmed value of key, or fallback when it is unset or blank.
func EnvString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// EnvBool parses key with strconv.ParseBool. Unset, blank or unparsable
// values yield fallback.
func EnvBool(key string, fallback bool) bool {
	raw := EnvString(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

// EnvPositiveInt64 returns fallback unless key holds an integer above zero.
func EnvPositiveInt64(key string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(EnvString(key, ""), 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// TracingEnabled reports OTEL_TRACES_ENABLED; tracing is off unless asked for.
func TracingEnabled() bool {
	return EnvBool("OTEL_TRACES_ENABLED", false)
}

func ServiceName() string {
	return EnvString("OTEL_SERVICE_NAME", defaultServiceName)
}
