// Package version carries build metadata injected through -ldflags.
package version

// Set at build time, e.g.
//
//	-ldflags "-X github.com/chatgpt-desktop/chatgpt-desktop/internal/version.Version=1.2.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Short is what the startup log line carries.
func Short() string {
	return Version + " (" + Commit + ")"
}

// Full is printed by --version.
func Full() string {
	return "chatgpt-desktop " + Version + " (commit: " + Commit + ", built: " + BuildTime + ")"
}

// IsDev reports whether this binary was built without release metadata.
func IsDev() bool {
	return Version == "dev"
}
