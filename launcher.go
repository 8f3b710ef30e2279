package wcjsbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// Retry defaults.
const (
	// DefaultMaxAttempts is the total number of build invocations: the
	// first attempt plus five retries.
	DefaultMaxAttempts = 6

	// DefaultRetryDelay is the wait between attempts.
	DefaultRetryDelay = 2 * time.Second
)

// State is the launcher's position in the retry state machine.
type State int

const (
	// StateRunning means a build attempt is pending or in flight.
	StateRunning State = iota
	// StateDone is terminal: the build succeeded.
	StateDone
	// StateFailed is terminal: the build failed for good.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the terminal result of Launch.
type Outcome struct {
	State    State
	Attempts int          // Number of Rebuild invocations
	Result   *BuildResult // Result of the last attempt that got past Rebuild, if any
	Err      error        // Why the launch failed; nil when State is StateDone
}

// ExitCode maps the outcome to a process exit status.
func (o *Outcome) ExitCode() int {
	if o.State == StateDone {
		return 0
	}
	return 1
}

// Launcher runs a build system with bounded retry on the module-not-found race.
//
// # Retry Policy
//
//   - A synchronous *ModuleNotFoundError is retried after Delay, up to
//     MaxAttempts invocations in total.
//   - Any other synchronous error fails immediately.
//   - A deferred failure (reported by Completion.Wait) fails immediately and
//     does not consult the attempt counter.
//
// Attempts never overlap. The counter belongs to a single Launch call, so a
// Launcher may be reused.
//
// # Example
//
//	launcher := &wcjsbuild.Launcher{System: &wcjsbuild.CMakeJSBuilder{}}
//	config := wcjsbuild.ApplyDefaults(wcjsbuild.ResolveConfiguration(env), wcjsbuild.HostPlatform())
//	outcome := launcher.Launch(ctx, config)
//	os.Exit(outcome.ExitCode())
type Launcher struct {
	System      BuildSystem
	MaxAttempts int             // 0 = DefaultMaxAttempts
	Delay       time.Duration   // 0 = DefaultRetryDelay; negative = no delay
	Clock       clockwork.Clock // nil = real clock
	Logger      *log.Logger     // nil = discard
}

// Launch runs the build until it succeeds or fails terminally.
//
// Cancelling ctx stops a pending retry wait and is passed to the build
// system. The returned Outcome is never nil and is always terminal.
func (l *Launcher) Launch(ctx context.Context, config *BuildConfig) *Outcome {
	maxAttempts, delay, clock, logger := l.settings()
	outcome := &Outcome{State: StateRunning}

	if l.System == nil {
		outcome.fail(errors.New("no build system configured"))
		return outcome
	}

	for outcome.State == StateRunning {
		if err := ctx.Err(); err != nil {
			outcome.fail(fmt.Errorf("build canceled: %w", err))
			break
		}

		outcome.Attempts++
		logger.Debug("starting build",
			"system", l.System.Name(),
			"attempt", outcome.Attempts,
			"runtime", config.Runtime,
			"runtime_version", config.RuntimeVersion,
			"arch", config.Arch)

		completion, err := l.System.Rebuild(ctx, config)
		switch {
		case err == nil && completion == nil:
			outcome.finish(&BuildResult{Success: true}, nil)

		case err == nil:
			outcome.finish(completion.Wait(ctx))

		case IsModuleNotFound(err) && outcome.Attempts < maxAttempts:
			logger.Warn("build tool not ready, retrying",
				"attempt", outcome.Attempts,
				"max_attempts", maxAttempts,
				"delay", delay,
				"err", err)
			if waitErr := sleep(ctx, clock, delay); waitErr != nil {
				outcome.fail(fmt.Errorf("build canceled: %w", waitErr))
			}

		case IsModuleNotFound(err):
			outcome.fail(fmt.Errorf("giving up after %d attempts: %w", outcome.Attempts, err))

		default:
			outcome.fail(err)
		}
	}

	if outcome.State == StateDone {
		logger.Info("build finished", "attempts", outcome.Attempts)
	} else {
		logger.Debug("build failed", "attempts", outcome.Attempts)
	}

	return outcome
}

func (o *Outcome) fail(err error) {
	o.State = StateFailed
	o.Err = err
}

// finish records how a started build ended.
func (o *Outcome) finish(result *BuildResult, err error) {
	if result == nil {
		result = &BuildResult{Success: err == nil, Error: err}
	}
	o.Result = result

	if err == nil && !result.Success {
		err = result.Error
		if err == nil {
			err = errors.New("build reported failure without an error")
		}
	}

	if err != nil {
		if !IsDeferredFailure(err) {
			err = &DeferredFailureError{Err: err}
		}
		o.fail(err)
		return
	}

	o.State = StateDone
}

func (l *Launcher) settings() (int, time.Duration, clockwork.Clock, *log.Logger) {
	maxAttempts := l.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	delay := l.Delay
	if delay == 0 {
		delay = DefaultRetryDelay
	}

	clock := l.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	logger := l.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return maxAttempts, delay, clock, logger
}

// sleep waits for d on clock unless ctx ends first.
func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
