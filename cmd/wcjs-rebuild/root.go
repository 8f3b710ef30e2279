package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	wcjsbuild "github.com/contriboss/wcjs-rebuild"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// envPrefix scopes launcher settings in the environment, e.g. WCJS_REBUILD_MAX_ATTEMPTS.
const envPrefix = "WCJS_REBUILD"

// app holds the command state and everything taken from the outside world.
type app struct {
	environ  func() []string
	platform string
	systems  func(output io.Writer) *wcjsbuild.BuildSystemFactory
	clock    clockwork.Clock

	settings *viper.Viper
	cfgFile  string
	envFile  string
	target   targetFlags
}

// targetFlags override the npm_config_wcjs_* environment when non-empty.
type targetFlags struct {
	runtime        string
	runtimeVersion string
	arch           string
	debug          bool
}

func newApp() *app {
	return &app{
		environ:  os.Environ,
		platform: wcjsbuild.HostPlatform(),
		systems:  wcjsbuild.NewBuildSystemFactory,
		clock:    clockwork.NewRealClock(),
		settings: viper.New(),
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wcjs-rebuild",
		Short: "Rebuild the WebChimera.js native module for a host runtime",
		Long: `wcjs-rebuild compiles the WebChimera.js native module with cmake-js.

The target runtime is read from the variables npm exports for install flags
(npm install --wcjs_runtime=electron --wcjs_runtime_version=1.4.0 ...):

  npm_config_wcjs_runtime          host runtime (default "nw")
  npm_config_wcjs_runtime_version  host runtime version (default "0.12.3")
  npm_config_wcjs_arch             target arch (default "ia32" on Windows)
  npm_config_wcjs_debug            build the Debug configuration

If cmake-js is not installed yet, the build is retried (6 attempts, 2s apart).

Launcher settings can also come from ` + envPrefix + `_* variables or --config.`,
		Version:           versionString(),
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadSettings,
		RunE:              a.runBuild,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file with launcher settings (yaml, toml or json)")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file with npm_config_wcjs_* values; the process environment wins")
	flags.String("dir", "", "module directory (default is the current directory)")
	flags.String("build-system", "", "build system to use (default is cmake-js)")
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.StringVar(&a.target.runtime, "runtime", "", "host runtime, overrides the environment")
	flags.StringVar(&a.target.runtimeVersion, "runtime-version", "", "host runtime version, overrides the environment")
	flags.StringVar(&a.target.arch, "arch", "", "target architecture, overrides the environment")
	flags.BoolVar(&a.target.debug, "debug", false, "build the Debug configuration")

	root.Flags().Int("max-attempts", wcjsbuild.DefaultMaxAttempts, "total build attempts while cmake-js cannot be found")
	root.Flags().Duration("delay", wcjsbuild.DefaultRetryDelay, "wait between attempts (0 retries at once)")
	root.Flags().Bool("check-tools", false, "verify node, cmake and a C++ compiler before building")

	root.AddCommand(a.configCommand())
	root.AddCommand(a.cleanCommand())
	root.AddCommand(a.toolsCommand())

	return root
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// loadSettings binds flags, WCJS_REBUILD_* variables and the config file.
// Precedence: flag, environment, config file, flag default.
func (a *app) loadSettings(cmd *cobra.Command, _ []string) error {
	v := a.settings
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", a.cfgFile, err)
		}
	}

	return nil
}

func (a *app) logger(cmd *cobra.Command) *log.Logger {
	verbose := a.settings.GetBool("verbose")

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix:          "wcjs-rebuild",
		ReportTimestamp: verbose,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// buildConfig resolves the target from the environment and flags, then
// applies defaults for the host platform.
func (a *app) buildConfig() (*wcjsbuild.BuildConfig, error) {
	env, err := a.env()
	if err != nil {
		return nil, err
	}

	config := wcjsbuild.ResolveConfiguration(env)
	if a.target.runtime != "" {
		config.Runtime = a.target.runtime
	}
	if a.target.runtimeVersion != "" {
		config.RuntimeVersion = a.target.runtimeVersion
	}
	if a.target.arch != "" {
		config.Arch = a.target.arch
	}
	if a.target.debug {
		config.Debug = true
	}

	config.Dir = a.settings.GetString("dir")
	config.Verbose = a.settings.GetBool("verbose")

	return wcjsbuild.ApplyDefaults(config, a.platform), nil
}

// env returns the process environment, filled in from --env-file where
// the process leaves a key unset or empty.
func (a *app) env() (map[string]string, error) {
	env := wcjsbuild.EnvMap(a.environ())
	if a.envFile == "" {
		return env, nil
	}

	fileEnv, err := godotenv.Read(a.envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", a.envFile, err)
	}

	for key, value := range fileEnv {
		if env[key] == "" {
			env[key] = value
		}
	}
	return env, nil
}

func (a *app) buildSystem(cmd *cobra.Command) (wcjsbuild.BuildSystem, error) {
	var output io.Writer
	if a.settings.GetBool("verbose") {
		output = cmd.ErrOrStderr()
	}
	return a.systems(output).BuildSystemFor(a.settings.GetString("build-system"))
}

func (a *app) runBuild(cmd *cobra.Command, _ []string) error {
	logger := a.logger(cmd)

	config, err := a.buildConfig()
	if err != nil {
		return err
	}

	system, err := a.buildSystem(cmd)
	if err != nil {
		return err
	}

	if a.settings.GetBool("check-tools") {
		if err := checkTools(system, logger); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
	}

	delay := a.settings.GetDuration("delay")
	if delay <= 0 {
		delay = -1
	}

	launcher := &wcjsbuild.Launcher{
		System:      system,
		MaxAttempts: a.settings.GetInt("max-attempts"),
		Delay:       delay,
		Clock:       a.clock,
		Logger:      logger,
	}

	outcome := launcher.Launch(cmd.Context(), config)
	if outcome.State != wcjsbuild.StateDone {
		return &ExitError{Code: outcome.ExitCode(), Err: outcome.Err}
	}

	if outcome.Result != nil {
		for _, artifact := range outcome.Result.Artifacts {
			logger.Info("built", "artifact", artifact)
		}
	}
	return nil
}

func checkTools(system wcjsbuild.BuildSystem, logger *log.Logger) error {
	checker, ok := system.(wcjsbuild.ToolChecker)
	if !ok {
		return nil
	}

	for _, name := range wcjsbuild.MissingOptionalTools(checker.RequiredTools()) {
		logger.Debug("optional tool not found", "tool", name)
	}
	if err := checker.CheckTools(); err != nil {
		return fmt.Errorf("build tools missing: %w", err)
	}
	return nil
}
