package wcjsbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfiguration(t *testing.T) {
	testCases := []struct {
		name     string
		env      map[string]string
		expected BuildConfig
	}{
		{
			name:     "empty environment leaves everything unset",
			env:      map[string]string{},
			expected: BuildConfig{},
		},
		{
			name: "npm config keys",
			env: map[string]string{
				EnvRuntime:        "electron",
				EnvRuntimeVersion: "1.4.0",
				EnvArch:           "x64",
			},
			expected: BuildConfig{Runtime: "electron", RuntimeVersion: "1.4.0", Arch: "x64"},
		},
		{
			name: "short keys",
			env: map[string]string{
				EnvRuntimeShort:        "node",
				EnvRuntimeVersionShort: "6.9.1",
				EnvArchShort:           "arm64",
				EnvDebugShort:          "true",
			},
			expected: BuildConfig{Runtime: "node", RuntimeVersion: "6.9.1", Arch: "arm64", Debug: true},
		},
		{
			name: "npm config key wins over short key",
			env: map[string]string{
				EnvRuntime:      "electron",
				EnvRuntimeShort: "node",
			},
			expected: BuildConfig{Runtime: "electron"},
		},
		{
			name: "empty value counts as unset",
			env: map[string]string{
				EnvRuntime:      "",
				EnvRuntimeShort: "node",
				EnvArch:         "",
			},
			expected: BuildConfig{Runtime: "node"},
		},
		{
			name:     "debug accepts npm style flags",
			env:      map[string]string{EnvDebug: "1"},
			expected: BuildConfig{Debug: true},
		},
		{
			name:     "debug ignores other values",
			env:      map[string]string{EnvDebug: "nope"},
			expected: BuildConfig{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := ResolveConfiguration(tc.env)
			require.NotNil(t, config)
			assert.Equal(t, tc.expected, *config)
		})
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	env := map[string]string{
		EnvRuntime:        "electron",
		EnvRuntimeVersion: "1.4.0",
		EnvArch:           "x64",
	}

	for _, platform := range []string{PlatformWindows, "linux", "darwin"} {
		t.Run(platform, func(t *testing.T) {
			config := ApplyDefaults(ResolveConfiguration(env), platform)
			assert.Equal(t, "electron", config.Runtime)
			assert.Equal(t, "1.4.0", config.RuntimeVersion)
			assert.Equal(t, "x64", config.Arch)
		})
	}
}

func TestApplyDefaultsOnEmptyEnvironment(t *testing.T) {
	testCases := []struct {
		platform     string
		expectedArch string
	}{
		{PlatformWindows, DefaultWindowsArch},
		{"linux", ""},
		{"darwin", ""},
		{"freebsd", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.platform, func(t *testing.T) {
			config := ApplyDefaults(ResolveConfiguration(nil), tc.platform)
			assert.Equal(t, DefaultRuntime, config.Runtime)
			assert.Equal(t, DefaultRuntimeVersion, config.RuntimeVersion)
			assert.Equal(t, tc.expectedArch, config.Arch)
		})
	}
}

func TestApplyDefaultsWindowsExample(t *testing.T) {
	config := ApplyDefaults(ResolveConfiguration(map[string]string{}), "win32")

	assert.Equal(t, BuildConfig{Runtime: "nw", RuntimeVersion: "0.12.3", Arch: "ia32"}, *config)
}

func TestApplyDefaultsWindowsArchOnly(t *testing.T) {
	config := ApplyDefaults(&BuildConfig{Runtime: "electron", RuntimeVersion: "1.4.0"}, PlatformWindows)

	assert.Equal(t, "electron", config.Runtime)
	assert.Equal(t, "1.4.0", config.RuntimeVersion)
	assert.Equal(t, DefaultWindowsArch, config.Arch)
}

func TestApplyDefaultsIsIdempotent(t *testing.T) {
	inputs := []*BuildConfig{
		{},
		{Runtime: "electron"},
		{RuntimeVersion: "0.13.0", Debug: true},
		{Arch: "x64"},
	}

	for _, platform := range []string{PlatformWindows, "linux"} {
		for _, input := range inputs {
			once := ApplyDefaults(input, platform)
			twice := ApplyDefaults(once, platform)
			assert.Equal(t, once, twice, "platform %s, input %+v", platform, *input)
		}
	}
}

func TestApplyDefaultsDoesNotMutateInput(t *testing.T) {
	input := &BuildConfig{Env: map[string]string{"A": "1"}, BuildArgs: []string{"--x"}}

	resolved := ApplyDefaults(input, PlatformWindows)
	resolved.Env["B"] = "2"
	resolved.BuildArgs[0] = "--y"

	assert.Equal(t, &BuildConfig{Env: map[string]string{"A": "1"}, BuildArgs: []string{"--x"}}, input)
}

func TestApplyDefaultsNilConfig(t *testing.T) {
	config := ApplyDefaults(nil, "linux")

	assert.Equal(t, DefaultRuntime, config.Runtime)
	assert.Equal(t, DefaultRuntimeVersion, config.RuntimeVersion)
	assert.Empty(t, config.Arch)
}

func TestNodePlatform(t *testing.T) {
	assert.Equal(t, "win32", nodePlatform("windows"))
	assert.Equal(t, "linux", nodePlatform("linux"))
	assert.Equal(t, "darwin", nodePlatform("darwin"))
}

func TestEnvMap(t *testing.T) {
	env := EnvMap([]string{
		"PATH=/usr/bin",
		"npm_config_wcjs_runtime=electron",
		"EQUALS=a=b",
		"EMPTY=",
		"NOVALUE",
		"=C:=C:\\",
		"PATH=/bin",
	})

	assert.Equal(t, map[string]string{
		"PATH":                    "/bin",
		"npm_config_wcjs_runtime": "electron",
		"EQUALS":                  "a=b",
		"EMPTY":                   "",
	}, env)
}
