// Package ports defines the contracts between the notification core and the
// host framework services it depends on.
//
// Port Design Principles:
//   - Context as first parameter on anything that may block
//   - Return domain types, never transport or driver types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small; adapters may implement optional capabilities
package ports

//go:generate sh -c "cd ../.. && go tool mockery"
