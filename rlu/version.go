package rlu

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version information for the RLU engine.
const (
	// Version is the current version of the engine.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0

	// ModulePath is the import path dependents require.
	ModulePath = "github.com/kolkov/rlu"
)

// Info describes the engine build.
type Info struct {
	// Version is the engine version string.
	Version string

	// Algorithm names the synchronization scheme.
	Algorithm string

	// MaxThreads is the registry capacity of a Global.
	MaxThreads int

	// LogCapacity is the default write-log budget in bytes.
	LogCapacity int
}

// GetInfo returns information about the engine.
//
// Example:
//
//	info := rlu.GetInfo()
//	fmt.Printf("RLU %s (%s)\n", info.Version, info.Algorithm)
func GetInfo() Info {
	return Info{
		Version:     Version,
		Algorithm:   "Read-Log-Update (SOSP 2015)",
		MaxThreads:  MaxThreads,
		LogCapacity: DefaultLogCapacity,
	}
}

// Compatible reports whether this engine satisfies a caller that needs at
// least version required ("1.2.3" or "v1.2.3").
//
// Versions before v1 only match within the same minor release.
func Compatible(required string) bool {
	if !strings.HasPrefix(required, "v") {
		required = "v" + required
	}
	if !semver.IsValid(required) {
		return false
	}

	current := "v" + Version
	if semver.Major(required) != semver.Major(current) {
		return false
	}
	if semver.Major(current) == "v0" && semver.MajorMinor(required) != semver.MajorMinor(current) {
		return false
	}
	return semver.Compare(current, required) >= 0
}
