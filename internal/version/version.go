// Package version carries build identity, stamped via -ldflags.
package version

var (
	// Version is the current client version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
)
