package wcjsbuild

import "context"

// BuildSystem defines the interface that native module build tools must implement.
//
// A build system is the external collaborator that actually compiles the
// module. The launcher only decides whether to retry or give up, so the
// interface reports the two failure points separately:
//
//  1. Rebuild() - starts a build. An error here is synchronous: the build
//     never got going (missing build tool module, missing executable).
//  2. Completion.Wait() - reports how the started build ended. An error here
//     is a deferred failure: the build started fine and failed later.
//
// # Example Implementation
//
//	type MyBuildSystem struct{}
//
//	func (b *MyBuildSystem) Name() string {
//	    return "my-build"
//	}
//
//	func (b *MyBuildSystem) Rebuild(ctx context.Context, config *BuildConfig) (Completion, error) {
//	    cmd := exec.CommandContext(ctx, "my-build", "--runtime", config.Runtime)
//	    if err := cmd.Start(); err != nil {
//	        return nil, err
//	    }
//	    return CompletionFunc(func(ctx context.Context) (*BuildResult, error) {
//	        if err := cmd.Wait(); err != nil {
//	            return &BuildResult{Error: err}, err
//	        }
//	        return &BuildResult{Success: true}, nil
//	    }), nil
//	}
//
// # Thread Safety
//
// BuildSystem implementations should be stateless. The launcher never runs
// two attempts at once, but a single instance may serve several launchers.
type BuildSystem interface {
	// Name returns the human-readable name of this build system.
	//
	// This name is used in error messages and logs.
	Name() string

	// Rebuild starts a clean build of the module described by config.
	//
	// config has already been through ApplyDefaults. Implementations must
	// not modify it.
	//
	// Returns:
	//   - a Completion for the running build on success
	//   - a synchronous error if the build could not be started; return a
	//     *ModuleNotFoundError when a required module is not installed yet
	Rebuild(ctx context.Context, config *BuildConfig) (Completion, error)
}

// Completion reports the outcome of a build that Rebuild has started.
type Completion interface {
	// Wait blocks until the build finishes.
	//
	// Returns a BuildResult with Success=true on success, or the result and a
	// non-nil error describing the deferred failure.
	Wait(ctx context.Context) (*BuildResult, error)
}

// CompletionFunc adapts a function to the Completion interface.
type CompletionFunc func(ctx context.Context) (*BuildResult, error)

// Wait calls f(ctx).
func (f CompletionFunc) Wait(ctx context.Context) (*BuildResult, error) {
	return f(ctx)
}

// Cleaner is an optional interface for build systems that can remove
// their build artifacts.
type Cleaner interface {
	Clean(ctx context.Context, config *BuildConfig) error
}
