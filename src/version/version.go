// Package version holds the fauxseq release number, which is logged by every subcommand and written into BAM headers.
package version

import "fmt"

// Program is the name recorded alongside the version
const Program = "fauxseq"

// the semantic version parts
const (
	major = 0
	minor = 3
	patch = 0
)

// GetVersion returns the full version string
func GetVersion() string {
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// GetBaseVersion returns the major.minor version string
func GetBaseVersion() string {
	return fmt.Sprintf("%d.%d", major, minor)
}

// Banner returns the program name and version as logged at the start of a run
func Banner() string {
	return fmt.Sprintf("this is %s (version %s)", Program, GetVersion())
}
