package wcjsbuild

import (
	"fmt"
	"os"
)

// BuildResult contains the output and status of a finished build.
//
// After a build completes, this structure provides:
//   - Success status indicating if the build completed without errors
//   - Output lines captured from the build process (stdout/stderr)
//   - Artifacts list of compiled native modules (.node files)
//   - Error information if the build failed
type BuildResult struct {
	Success   bool     // True if build completed successfully
	Output    []string // Lines of output from the build process
	Artifacts []string // Paths to built .node files, relative to BuildConfig.Dir
	Error     error    // Error if build failed, nil otherwise
}

// BuildConfig contains the configuration for one native module build.
//
// Target host runtime (resolved from the environment, see ResolveConfiguration):
//   - Runtime: host runtime identifier (nw, electron, node)
//   - RuntimeVersion: host runtime version (e.g., "0.12.3")
//   - Arch: target CPU architecture (ia32, x64, arm64)
//   - Debug: build the Debug configuration instead of Release
//
// An empty string means "unset". ApplyDefaults fills unset fields and never
// touches a value that is already present.
//
// Build invocation:
//   - Dir: directory holding the module's package.json and CMakeLists.txt
//   - BuildArgs: additional arguments passed to the build system
//   - Env: environment variables set during the build
//   - Verbose: capture the invoked command line in BuildResult.Output
type BuildConfig struct {
	// Host runtime
	Runtime        string // Target runtime (nw, electron, node)
	RuntimeVersion string // Target runtime version
	Arch           string // Target architecture (ia32, x64, ...)
	Debug          bool   // Debug build

	// Build invocation
	Dir       string            // Module source directory ("" = current directory)
	BuildArgs []string          // Additional build arguments
	Env       map[string]string // Environment variables for build
	Verbose   bool              // Enable verbose output
}

// Clone returns a copy of the configuration that shares no mutable state
// with the receiver.
func (c *BuildConfig) Clone() *BuildConfig {
	if c == nil {
		return &BuildConfig{}
	}

	clone := *c
	if c.BuildArgs != nil {
		clone.BuildArgs = append([]string{}, c.BuildArgs...)
	}
	if c.Env != nil {
		clone.Env = make(map[string]string, len(c.Env))
		for key, value := range c.Env {
			clone.Env[key] = value
		}
	}
	return &clone
}

// WorkingDir returns Dir, or the current directory when Dir is unset.
func (c *BuildConfig) WorkingDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return dir, nil
}
