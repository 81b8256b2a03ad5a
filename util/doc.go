// Package util provides generic utility functions for reqkit.
//
// It includes zero-value coalescing, sorted keys and map merging used
// when combining instance defaults with call-site configuration.
package util
