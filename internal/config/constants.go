package config

// Application constants - all hardcoded values for the AdPulse system
const (
	// Application Info
	AppName    = "AdPulse"
	AppVersion = "1.0.0"

	// Upload Limits
	MaxUploadSize     = 25 * 1024 * 1024 // 25MB
	MaxUploadRowCount = 500_000

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// File Paths (relative to executable)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10
)

// Feature Flags - compile-time configuration
const (
	FeatureMetricsEnabled     = true
	FeatureHealthCheckEnabled = true

	// Security Features
	FeatureRateLimitingEnabled = true

	// Development Features
	FeatureDebugLoggingEnabled = false
	FeatureMockDataEnabled     = false
)

// GetFeatureFlag returns the value of a feature flag
func GetFeatureFlag(flag string) bool {
	switch flag {
	case "metrics":
		return FeatureMetricsEnabled
	case "health_check":
		return FeatureHealthCheckEnabled
	case "rate_limiting":
		return FeatureRateLimitingEnabled
	case "debug_logging":
		return FeatureDebugLoggingEnabled
	case "mock_data":
		return FeatureMockDataEnabled
	default:
		return false
	}
}
