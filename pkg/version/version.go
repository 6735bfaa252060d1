package version

// Version is the application version, overridden at build time via
// -ldflags "-X wikitextifier/pkg/version.Version=...".
var Version = "1.0.0-dev"
