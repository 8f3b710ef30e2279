package wcjsbuild

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTools makes only the named tools resolvable for the duration of the test.
func withTools(t *testing.T, installed ...string) {
	t.Helper()

	available := make(map[string]bool, len(installed))
	for _, name := range installed {
		available[name] = true
	}

	original := lookPath
	lookPath = func(file string) (string, error) {
		if available[file] {
			return "/usr/bin/" + file, nil
		}
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
	}
	t.Cleanup(func() { lookPath = original })
}

func TestCheckToolAvailable(t *testing.T) {
	withTools(t, "cmake")

	assert.NoError(t, CheckToolAvailable("cmake"))
	assert.EqualError(t, CheckToolAvailable("ninja"), "ninja not found in PATH")
}

func TestCheckRequiredTools(t *testing.T) {
	requirements := (&CMakeJSBuilder{}).RequiredTools()

	testCases := []struct {
		name      string
		installed []string
		expected  string
	}{
		{
			name:      "all present",
			installed: []string{"node", "cmake", "c++", "ninja"},
		},
		{
			name:      "alternative compiler and no ninja",
			installed: []string{"node", "cmake", "clang++"},
		},
		{
			name:      "one missing",
			installed: []string{"node", "g++"},
			expected:  "cmake (CMake build system) not found in PATH",
		},
		{
			name:     "several missing",
			expected: "missing required tools: node (Node.js to run cmake-js), cmake (CMake build system), c++ (C++ compiler)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			withTools(t, tc.installed...)

			err := CheckRequiredTools(requirements)
			if tc.expected == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.expected)
		})
	}
}

func TestCheckRequiredToolsWithoutPurpose(t *testing.T) {
	withTools(t)

	err := CheckRequiredTools([]ToolRequirement{{Name: "make"}})
	assert.EqualError(t, err, "make not found in PATH")
}

func TestMissingOptionalTools(t *testing.T) {
	withTools(t, "node", "cmake", "c++")

	builder := &CMakeJSBuilder{}
	assert.Equal(t, []string{"ninja"}, MissingOptionalTools(builder.RequiredTools()))
	require.NoError(t, builder.CheckTools())
}

func TestCMakeJSBuilderIsToolChecker(t *testing.T) {
	var system BuildSystem = &CMakeJSBuilder{}
	_, ok := system.(ToolChecker)
	assert.True(t, ok)

	_, ok = system.(Cleaner)
	assert.True(t, ok)
}
