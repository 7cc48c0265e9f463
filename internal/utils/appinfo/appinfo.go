// Package appinfo reports the running build and deployment environment
package appinfo

import (
	"os"
	"runtime/debug"
	"strings"
)

// Environment returns the normalized deployment environment from GO_ENV,
// falling back to ENVIRONMENT and then "development".
func Environment() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	case "", "dev", "development":
		return "development"
	default:
		return strings.ToLower(env)
	}
}

// Version returns APP_VERSION, the module version or the VCS revision,
// in that order.
func Version() string {
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return "0.0.0-unknown"
}
