package constants

import "time"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindow is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
	// DefaultWaitlistRateLimitRequests caps signups per client per window
	DefaultWaitlistRateLimitRequests = 10
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

// Waitlist record constants.
const (
	// WaitlistProjectName tags every entry written by this service.
	WaitlistProjectName = "launchlist"
	// UnknownIPAddress is stored when the client IP cannot be determined.
	UnknownIPAddress = "unknown"
	// ForwardedForHeader carries the client IP set by the edge proxy.
	ForwardedForHeader = "X-Forwarded-For"
)
