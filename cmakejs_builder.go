package wcjsbuild

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Build tool constants
const (
	cmakeJSModule   = "cmake-js"
	nodeProgram     = "node"
	platformWindows = "windows"

	// streamedErrorTail caps the output repeated in an error when it has
	// already been streamed.
	streamedErrorTail = 20
)

// requireCheck loads the package passed as the first argument the way
// cmake-js' own entry point will, so missing dependencies surface before
// the build starts.
const requireCheck = "require(process.argv[1])"

var cannotFindModule = regexp.MustCompile(`Cannot find module '([^']+)'`)

// CMakeJSBuilder builds the native module with cmake-js.
//
// The cmake-js package is resolved the way Node resolves require("cmake-js"):
// node_modules directories from the module directory upward, then NODE_PATH.
// When npm installs dependencies in parallel, cmake-js may not be on disk yet
// when the install script runs; Rebuild reports that as a *ModuleNotFoundError
// so the launcher can retry. This covers a missing package, a missing entry
// point, and cmake-js dependencies that node cannot load yet.
type CMakeJSBuilder struct {
	// NodePath is the node executable ("" = node from PATH).
	NodePath string

	// Stream, if non-nil, receives build output as it is produced.
	// Output is always captured in BuildResult.Output as well.
	Stream io.Writer
}

// Name returns the builder name
func (b *CMakeJSBuilder) Name() string {
	return cmakeJSModule
}

// Rebuild starts "cmake-js rebuild" for the configured runtime.
func (b *CMakeJSBuilder) Rebuild(ctx context.Context, config *BuildConfig) (Completion, error) {
	dir, err := config.WorkingDir()
	if err != nil {
		return nil, err
	}

	pkgDir, script, err := b.resolveScript(dir)
	if err != nil {
		return nil, err
	}

	if err := b.checkLoadable(ctx, config, dir, pkgDir); err != nil {
		return nil, err
	}

	args := append([]string{script}, rebuildArgs(config)...)
	return b.start(ctx, config, dir, args)
}

// Clean removes build artifacts with "cmake-js clean".
func (b *CMakeJSBuilder) Clean(ctx context.Context, config *BuildConfig) error {
	dir, err := config.WorkingDir()
	if err != nil {
		return err
	}

	_, script, err := b.resolveScript(dir)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, b.nodeProgram(), script, "clean")
	cmd.Dir = dir
	cmd.Env = buildEnv(config)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return BuildError("cmake-js clean", splitLines(output), err)
	}
	return nil
}

// RequiredTools returns the tools cmake-js needs to compile the module.
func (b *CMakeJSBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: b.nodeProgram(), Purpose: "Node.js to run cmake-js"},
		{Name: "cmake", Purpose: "CMake build system"},
		{Name: "c++", Alternatives: []string{"g++", "clang++", "cl"}, Purpose: "C++ compiler"},
		{Name: "ninja", Optional: true, Purpose: "Ninja build tool (faster than make)"},
	}
}

// CheckTools verifies that all required tools are available.
func (b *CMakeJSBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// start launches node with args and returns a Completion for the process.
func (b *CMakeJSBuilder) start(ctx context.Context, config *BuildConfig, dir string, args []string) (Completion, error) {
	cmd := exec.CommandContext(ctx, b.nodeProgram(), args...)
	cmd.Dir = dir
	cmd.Env = buildEnv(config)

	var captured bytes.Buffer
	var sink io.Writer = &captured
	if b.Stream != nil {
		sink = io.MultiWriter(&captured, b.Stream)
	}
	cmd.Stdout = sink
	cmd.Stderr = sink

	var header []string
	if config.Verbose {
		header = []string{
			fmt.Sprintf("Running: %s %s", b.nodeProgram(), strings.Join(args, " ")),
			fmt.Sprintf("Working directory: %s", dir),
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmakeJSModule, err)
	}

	return CompletionFunc(func(context.Context) (*BuildResult, error) {
		err := cmd.Wait()

		output := splitLines(captured.Bytes())
		result := &BuildResult{Output: append(append([]string{}, header...), output...)}

		if err != nil {
			// Streamed output is already on screen; keep only the end of it.
			if b.Stream != nil {
				output = tailLines(output, streamedErrorTail)
			}
			result.Error = &DeferredFailureError{Err: BuildError("cmake-js", output, err)}
			return result, result.Error
		}

		artifacts, err := findBuiltArtifacts(dir, config.Debug)
		if err != nil {
			result.Error = &DeferredFailureError{Err: err}
			return result, result.Error
		}

		result.Artifacts = artifacts
		result.Success = true
		return result, nil
	}), nil
}

// resolveScript locates the cmake-js package and its command line entry point.
func (b *CMakeJSBuilder) resolveScript(dir string) (string, string, error) {
	pkgDir, err := resolveModule(cmakeJSModule, dir, filepath.SplitList(os.Getenv("NODE_PATH")))
	if err != nil {
		return "", "", err
	}

	bin, err := packageBin(pkgDir, cmakeJSModule)
	if err != nil {
		return "", "", err
	}
	return pkgDir, bin, nil
}

// checkLoadable requires the cmake-js package in a short node process.
//
// A "Cannot find module" failure becomes a *ModuleNotFoundError; any other
// failure is returned as a plain synchronous error.
func (b *CMakeJSBuilder) checkLoadable(ctx context.Context, config *BuildConfig, dir, pkgDir string) error {
	cmd := exec.CommandContext(ctx, b.nodeProgram(), "-e", requireCheck, pkgDir)
	cmd.Dir = dir
	cmd.Env = buildEnv(config)

	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if notFound := moduleNotFoundIn(output, pkgDir); notFound != nil {
		return notFound
	}
	return BuildError("cmake-js load check", splitLines(output), err)
}

// moduleNotFoundIn recognizes node's MODULE_NOT_FOUND report in output.
func moduleNotFoundIn(output []byte, searchedFrom string) *ModuleNotFoundError {
	text := string(output)
	if match := cannotFindModule.FindStringSubmatch(text); match != nil {
		return &ModuleNotFoundError{Module: match[1], SearchedFrom: searchedFrom}
	}
	if strings.Contains(text, "MODULE_NOT_FOUND") {
		return &ModuleNotFoundError{Module: cmakeJSModule, SearchedFrom: searchedFrom}
	}
	return nil
}

func (b *CMakeJSBuilder) nodeProgram() string {
	if b.NodePath != "" {
		return b.NodePath
	}
	return nodeProgram
}

// rebuildArgs translates the configuration into cmake-js arguments.
func rebuildArgs(config *BuildConfig) []string {
	args := []string{"rebuild"}

	if config.Runtime != "" {
		args = append(args, "--runtime", config.Runtime)
	}
	if config.RuntimeVersion != "" {
		args = append(args, "--runtime-version", config.RuntimeVersion)
	}
	// Unset arch is left to cmake-js, which uses the host arch.
	if config.Arch != "" {
		args = append(args, "--arch", config.Arch)
	}
	if config.Debug {
		args = append(args, "--debug")
	}

	return append(args, config.BuildArgs...)
}

// resolveModule finds the package directory of module the way Node's
// require does: <dir>/node_modules/<module> for dir and every parent,
// then each entry of nodePath.
func resolveModule(module, from string, nodePath []string) (string, error) {
	start, err := filepath.Abs(from)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", from, err)
	}

	for dir := start; ; {
		if filepath.Base(dir) != "node_modules" {
			candidate := filepath.Join(dir, "node_modules", module)
			if isPackageDir(candidate) {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for _, dir := range nodePath {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, module)
		if isPackageDir(candidate) {
			return candidate, nil
		}
	}

	return "", &ModuleNotFoundError{Module: module, SearchedFrom: start}
}

func isPackageDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "package.json"))
	return err == nil && !info.IsDir()
}

// packageBin returns the absolute path of the named executable declared in
// the "bin" field of pkgDir/package.json.
func packageBin(pkgDir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err != nil {
		return "", fmt.Errorf("failed to read package.json of %s: %w", name, err)
	}

	var manifest struct {
		Bin json.RawMessage `json:"bin"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("failed to parse package.json of %s: %w", name, err)
	}

	// "bin" is either a single path or a map of command name to path.
	// Older cmake-js releases ship bin/<name> without declaring it.
	declared := filepath.Join("bin", name)
	var single string
	var commands map[string]string
	if err := json.Unmarshal(manifest.Bin, &single); err == nil && single != "" {
		declared = filepath.FromSlash(single)
	} else if err := json.Unmarshal(manifest.Bin, &commands); err == nil && commands[name] != "" {
		declared = filepath.FromSlash(commands[name])
	}

	// A package.json without its entry point is a package still being extracted.
	bin := filepath.Join(pkgDir, declared)
	if info, err := os.Stat(bin); err != nil || info.IsDir() {
		return "", &ModuleNotFoundError{Module: name, SearchedFrom: pkgDir}
	}
	return bin, nil
}

// findBuiltArtifacts locates compiled .node files
func findBuiltArtifacts(dir string, debug bool) ([]string, error) {
	var artifacts []string

	// cmake-js writes to build/<Config>; some generators add another level.
	configuration := "Release"
	if debug {
		configuration = "Debug"
	}
	searchDirs := []string{
		filepath.Join("build", configuration),
		filepath.Join("build", configuration, configuration),
		"build",
	}

	for _, searchDir := range searchDirs {
		fullSearchDir := filepath.Join(dir, searchDir)
		if _, err := os.Stat(fullSearchDir); os.IsNotExist(err) {
			continue
		}

		matches, err := filepath.Glob(filepath.Join(fullSearchDir, "*.node"))
		if err != nil {
			return nil, fmt.Errorf("failed to glob *.node in %s: %v", fullSearchDir, err)
		}

		for _, match := range matches {
			relPath, err := filepath.Rel(dir, match)
			if err == nil {
				artifacts = append(artifacts, filepath.ToSlash(relPath))
			}
		}
	}

	return artifacts, nil
}


func buildEnv(config *BuildConfig) []string {
	env := os.Environ()
	for key, value := range config.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	return env
}

func tailLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return append([]string{fmt.Sprintf("... %d earlier lines omitted", len(lines)-n)}, lines[len(lines)-n:]...)
}

func splitLines(output []byte) []string {
	trimmed := strings.TrimRight(string(output), "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}
