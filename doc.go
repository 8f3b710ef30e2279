// Package wcjsbuild compiles the WebChimera.js native module for a target host runtime.
//
// The package resolves the build target from the environment npm hands to
// install scripts, fills in defaults, and runs cmake-js with a bounded retry
// for the race where cmake-js itself is not installed yet.
//
// # Basic Usage
//
//	env := wcjsbuild.EnvMap(os.Environ())
//	config := wcjsbuild.ApplyDefaults(wcjsbuild.ResolveConfiguration(env), wcjsbuild.HostPlatform())
//
//	launcher := &wcjsbuild.Launcher{System: &wcjsbuild.CMakeJSBuilder{}}
//	outcome := launcher.Launch(ctx, config)
//	os.Exit(outcome.ExitCode())
//
// # Configuration
//
// Environment variables (all optional):
//   - npm_config_wcjs_runtime / WCJS_RUNTIME: host runtime (default "nw")
//   - npm_config_wcjs_runtime_version / WCJS_RUNTIME_VERSION: host version (default "0.12.3")
//   - npm_config_wcjs_arch / WCJS_ARCH: target arch (default "ia32" on Windows, host arch elsewhere)
//   - npm_config_wcjs_debug / WCJS_DEBUG: build the Debug configuration
//
// # Architecture
//
//	Launcher (retry state machine: running -> done | failed)
//	└── BuildSystem (selected through BuildSystemFactory)
//	    └── CMakeJSBuilder (node_modules/cmake-js, "cmake-js rebuild")
//
// A build system reports failures at two points: Rebuild returns synchronous
// errors, Completion.Wait returns deferred ones. Only a synchronous
// *ModuleNotFoundError is retried.
package wcjsbuild
