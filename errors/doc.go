// Package errors provides the structured error type used across reqkit.
// It carries machine-readable codes for the dispatch error taxonomy:
// configuration contract violations, transformer failures, adapter
// failures, status validation failures and cancellation.
package errors
