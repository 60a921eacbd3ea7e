package version

import "fmt"

// Set via -ldflags "-X github.com/tkjaer/echobench/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// IsDev reports whether this binary was built without release ldflags.
func IsDev() bool {
	return Version == "dev"
}

// FullVersion returns the string printed by --version.
func FullVersion() string {
	if IsDev() {
		return "echobench development build"
	}
	return fmt.Sprintf("echobench %s (commit: %s, built: %s)", Version, GitCommit, BuildDate)
}
