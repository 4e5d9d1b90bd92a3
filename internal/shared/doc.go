// Package shared provides common utilities and test helpers used across the
// AdPulse codebase. It serves as a central location for functionality that
// doesn't belong to any specific domain or architectural layer.
//
// # Structure
//
//   - testutil: testing utilities, currently the buffered slog handler used
//     to assert on structured log output
//
// # Usage Guidelines
//
// This package should only contain test utilities used by multiple packages
// and generic helpers with no domain-specific logic. Business logic belongs
// in the domain packages; shared must never import them.
package shared
