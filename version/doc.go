// Package version exposes build version information for reqkit.
//
// Values are injected at build time via -ldflags and completed from the
// embedded build info. UserAgent renders the default User-Agent header
// carried by every request.
package version
