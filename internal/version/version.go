// Package version holds build identity. Version and BuildDate are set with -ldflags.
package version

var (
	AppName        = "Mimic"
	AppDescription = "Learns what a group says and occasionally says it back."
	Version        = "dev"
	BuildDate      = "unknown"
)
