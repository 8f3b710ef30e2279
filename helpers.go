package wcjsbuild

import (
	"fmt"
	"strings"
)

// BuildError creates a standardized build error with output context.
//
// The captured output is attached so that compiler diagnostics reach the
// user even when the build tool only reports a nonzero exit status.
//
// # Format
//
// With error and output:
//
//	cmake-js build failed: exit status 1
//
//	Build output:
//	-- Configuring incomplete, errors occurred!
//
// With error but no output:
//
//	cmake-js build failed: exit status 1
//
// With output but no error:
//
//	cmake-js build failed
//
//	Build output:
//	... output lines ...
//
// The underlying error is wrapped, so errors.Is/As still see it.
func BuildError(builder string, output []string, err error) error {
	outputStr := strings.TrimRight(strings.Join(output, "\n"), "\n")

	if err == nil {
		if outputStr != "" {
			return fmt.Errorf("%s build failed\n\nBuild output:\n%s", builder, outputStr)
		}
		return fmt.Errorf("%s build failed", builder)
	}

	if outputStr != "" {
		return fmt.Errorf("%s build failed: %w\n\nBuild output:\n%s", builder, err, outputStr)
	}
	return fmt.Errorf("%s build failed: %w", builder, err)
}
