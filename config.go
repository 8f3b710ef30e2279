package wcjsbuild

import (
	"runtime"
	"strings"
)

// Default target used when the caller does not pick one.
const (
	DefaultRuntime        = "nw"
	DefaultRuntimeVersion = "0.12.3"
	DefaultWindowsArch    = "ia32"
)

// PlatformWindows is the Node-style name of the Windows platform.
const PlatformWindows = "win32"

// Environment keys read by ResolveConfiguration.
//
// npm exports every "--wcjs_<name>=value" install flag as
// "npm_config_wcjs_<name>", so those keys are checked first. The short
// WCJS_* forms are accepted for direct invocations outside npm.
const (
	EnvRuntime        = "npm_config_wcjs_runtime"
	EnvRuntimeVersion = "npm_config_wcjs_runtime_version"
	EnvArch           = "npm_config_wcjs_arch"
	EnvDebug          = "npm_config_wcjs_debug"

	EnvRuntimeShort        = "WCJS_RUNTIME"
	EnvRuntimeVersionShort = "WCJS_RUNTIME_VERSION"
	EnvArchShort           = "WCJS_ARCH"
	EnvDebugShort          = "WCJS_DEBUG"
)

// ResolveConfiguration builds a BuildConfig from environment variables.
//
// Each field takes the first non-empty value among its keys; fields with no
// value stay unset (empty). No defaults are applied here, see ApplyDefaults.
//
// The env map is only read. Resolution cannot fail.
func ResolveConfiguration(env map[string]string) *BuildConfig {
	return &BuildConfig{
		Runtime:        lookupEnv(env, EnvRuntime, EnvRuntimeShort),
		RuntimeVersion: lookupEnv(env, EnvRuntimeVersion, EnvRuntimeVersionShort),
		Arch:           lookupEnv(env, EnvArch, EnvArchShort),
		Debug:          parseBool(lookupEnv(env, EnvDebug, EnvDebugShort)),
	}
}

// ApplyDefaults returns a copy of config with unset fields defaulted.
//
//   - Runtime defaults to DefaultRuntime
//   - RuntimeVersion defaults to DefaultRuntimeVersion
//   - Arch defaults to DefaultWindowsArch only when platform is "win32";
//     elsewhere it stays unset and the build tool picks the host arch
//
// Values already present are kept, so applying defaults twice yields the
// same configuration as applying them once.
func ApplyDefaults(config *BuildConfig, platform string) *BuildConfig {
	resolved := config.Clone()

	if resolved.Runtime == "" {
		resolved.Runtime = DefaultRuntime
	}

	if resolved.RuntimeVersion == "" {
		resolved.RuntimeVersion = DefaultRuntimeVersion
	}

	if resolved.Arch == "" && platform == PlatformWindows {
		resolved.Arch = DefaultWindowsArch
	}

	return resolved
}

// HostPlatform returns the Node-style platform name of the running host
// ("win32", "darwin", "linux", ...).
func HostPlatform() string {
	return nodePlatform(runtime.GOOS)
}

func nodePlatform(goos string) string {
	if goos == platformWindows {
		return PlatformWindows
	}
	return goos
}

// EnvMap converts an os.Environ style list into a lookup map.
//
// Entries without '=' are ignored. Later duplicates win, matching how
// the process environment is resolved.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

func lookupEnv(env map[string]string, keys ...string) string {
	for _, key := range keys {
		if value := env[key]; value != "" {
			return value
		}
	}
	return ""
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
