package config

// Version is the govern-server binary version.
// Set at build time via: -ldflags "-X github.com/adlytics/govern/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
