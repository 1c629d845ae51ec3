package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Capture and extraction limits
const (
	// DefaultCaptureMaxBytes caps the snapshot tail sent to the model
	DefaultCaptureMaxBytes = 50_000
	// DefaultExcerptBytes caps captured stdout/stderr per attempt record
	DefaultExcerptBytes = 4096
	// DefaultMaxTokens is the default completion budget per model call
	DefaultMaxTokens = 4096
)

// Timeout constants
const (
	// DefaultModelTimeout bounds the extraction and chat calls; the session
	// must fail fast rather than block indefinitely
	DefaultModelTimeout = 60 * time.Second
)

// History constants
const (
	// DefaultHistoryLimit is the default number of dedup records to display
	DefaultHistoryLimit = 20
)

// Time formats
const (
	// TimestampFormat is the storage timestamp format
	TimestampFormat = time.RFC3339
)
