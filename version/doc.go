// Package version reports build information for the streamkit binary.
//
// Version, commit and build time are set at compile time:
//
//	go build -ldflags "-X github.com/kbukum/streamkit/version.Version=1.0.0" ./cmd/streamkit
package version
