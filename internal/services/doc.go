// Package services implements the business logic layer of the AdPulse
// application. It provides a clean separation between HTTP handlers and data
// access, ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides these core services:
//
//	- DatasetService: upload validation, persistence and lifecycle
//	- AnalyticsService: aggregation queries over stored records
//	- HealthService: system health and readiness checks
//
// Services return domain-specific errors that handlers transform into
// RFC 7807 problem responses.
package services
