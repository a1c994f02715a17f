// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants holds the fixed values shared by the accounts server and CLI.

Anything an operator may want to tune lives in config instead. What remains
here are HTTP server timings, the per-IP limiter shape, header names, the
session cookie identity and the Redis key namespaces.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomira-accounts"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Registration sends its verification email inline, so this exceeds the notify timeout.
	DefaultWriteTimeout = 20 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout bounds the wait for in-flight requests on SIGTERM.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the sustained request rate allowed per client IP.
	// The login lockout is the finer-grained guard on credential guessing.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Sessions

const (
	// SessionCookieName is the cookie carrying the opaque session identifier.
	SessionCookieName = "session_id"

	// SessionCookiePath scopes the session cookie to the API.
	SessionCookiePath = "/"
)

// # Redis Prefixes

// Session keys are suffixed with the SHA-256 of the session ID, never the raw
// value, so a dump of Redis cannot be replayed as cookies.
const (
	RedisPrefixSession         = "auth:session:"
	RedisPrefixAccountSessions = "auth:account_sessions:"
	RedisPrefixLoginFailures   = "auth:login_failures:"
)
