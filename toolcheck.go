package wcjsbuild

import (
	"fmt"
	"os/exec"
	"strings"
)

// ToolChecker is an optional interface for build systems that require external tools.
//
// Check tools before launching to fail fast with a readable message instead
// of a compiler-detection error deep inside the build output:
//
//	if checker, ok := system.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
//
// A missing tool is not a retryable condition. It is reported as a plain
// error, never as a *ModuleNotFoundError.
type ToolChecker interface {
	// RequiredTools returns the list of tools this build system needs.
	RequiredTools() []ToolRequirement

	// CheckTools verifies that all required tools are available.
	//
	// Optional tools don't cause errors if missing.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name:         "c++",
//	    Alternatives: []string{"g++", "clang++", "cl"},
//	    Purpose:      "C++ compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "cmake", "node").
	Name string

	// Alternatives are tool names that also satisfy this requirement.
	Alternatives []string

	// Optional tools are checked but never cause an error.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// CheckToolAvailable checks if a tool is available in the system PATH.
func CheckToolAvailable(tool string) error {
	if _, err := lookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available.
//
// The primary name is tried first, then each alternative in order. All
// missing required tools are reported in one error.
//
// # Error Format
//
// Single missing tool:
//
//	cmake (CMake build system) not found in PATH
//
// Multiple missing tools:
//
//	missing required tools: cmake (CMake build system), node (Node.js to run cmake-js)
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		if req.Optional || toolFound(req) {
			continue
		}

		if req.Purpose != "" {
			missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
		} else {
			missingTools = append(missingTools, req.Name)
		}
	}

	switch len(missingTools) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	default:
		return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
	}
}

// MissingOptionalTools returns the names of optional tools that are not installed.
func MissingOptionalTools(requirements []ToolRequirement) []string {
	var missing []string
	for _, req := range requirements {
		if req.Optional && !toolFound(req) {
			missing = append(missing, req.Name)
		}
	}
	return missing
}

func toolFound(req ToolRequirement) bool {
	if CheckToolAvailable(req.Name) == nil {
		return true
	}
	for _, alt := range req.Alternatives {
		if CheckToolAvailable(alt) == nil {
			return true
		}
	}
	return false
}
