package wcjsbuild

import (
	"fmt"
	"io"
	"strings"
)

// BuildSystemFactory manages the registration and selection of build systems.
//
// The factory maintains a registry of BuildSystem implementations and
// provides methods to:
//   - Register new build systems
//   - Find a build system by name
//   - List what is available
//
// # Usage
//
// Create a factory with all standard build systems:
//
//	factory := wcjsbuild.NewBuildSystemFactory(os.Stderr)
//	system, err := factory.BuildSystemFor("cmake-js")
//
// Or create an empty factory and register custom ones:
//
//	factory := &wcjsbuild.BuildSystemFactory{}
//	factory.Register(&MyBuildSystem{})
//
// # Thread Safety
//
// BuildSystemFactory is NOT thread-safe for registration.
// Register all build systems before concurrent use.
type BuildSystemFactory struct {
	systems []BuildSystem
}

// NewBuildSystemFactory creates a factory with the standard build systems registered.
//
// The first registered build system is the default (see Default).
// If output is non-nil, build output is streamed to it while builds run.
func NewBuildSystemFactory(output io.Writer) *BuildSystemFactory {
	factory := &BuildSystemFactory{}
	factory.Register(&CMakeJSBuilder{Stream: output})
	return factory
}

// Register adds a new build system to the factory.
//
// Build systems are looked up in the order they are registered. If two
// share a name, the first one wins.
func (f *BuildSystemFactory) Register(system BuildSystem) {
	f.systems = append(f.systems, system)
}

// BuildSystemFor returns the build system registered under name.
//
// Names are compared case-insensitively. An empty name selects the default.
func (f *BuildSystemFactory) BuildSystemFor(name string) (BuildSystem, error) {
	if name == "" {
		return f.Default()
	}

	for _, system := range f.systems {
		if strings.EqualFold(system.Name(), name) {
			return system, nil
		}
	}

	return nil, fmt.Errorf("no build system named %q (available: %s)", name, strings.Join(f.Names(), ", "))
}

// Default returns the first registered build system.
func (f *BuildSystemFactory) Default() (BuildSystem, error) {
	if len(f.systems) == 0 {
		return nil, fmt.Errorf("no build systems registered")
	}
	return f.systems[0], nil
}

// ListBuildSystems returns a copy of all registered build systems.
func (f *BuildSystemFactory) ListBuildSystems() []BuildSystem {
	return append([]BuildSystem{}, f.systems...)
}

// Names returns the names of the registered build systems in order.
func (f *BuildSystemFactory) Names() []string {
	names := make([]string, 0, len(f.systems))
	for _, system := range f.systems {
		names = append(names, system.Name())
	}
	return names
}
