package env

const AppName = "pnglet"

// Set at build time with -ldflags "-X github.com/ostafen/pnglet/internal/env.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
