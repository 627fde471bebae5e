// Package common provides shared interfaces used throughout the dirlock application.
//
// It holds application-wide contracts that let packages interact without
// depending on each other's implementations.
//
// # Core Components
//
// - Logger: Interface defining standardized logging methods used throughout the application
// - NopLogger: Logger that discards everything, used when no logger is injected
//
// # Usage
//
// The Logger interface is typically injected into components that need logging capabilities:
//
//	l, err := lock.New(path, lock.WithLogger(appLogger))
//
// Components that receive no logger fall back to NopLogger so they never
// have to nil-check before logging.
//
// # Design Principles
//
// - Minimal Dependencies: The common package has no dependencies on other internal packages
// - Interface-Based Design: Favors interfaces over concrete implementations
// - Separation of Concerns: Clearly separates user-facing and internal functionality
package common
