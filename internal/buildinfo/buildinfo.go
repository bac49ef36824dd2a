// Package buildinfo carries the version stamped at build time.
package buildinfo

// Version is overridden via -ldflags at release builds.
var Version = "dev"
