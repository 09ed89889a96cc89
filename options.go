package green

import "github.com/joeycumines/logiface"

// DefaultStackSize is the stack-size hint used by Spawn when the caller
// passes 0. It matches the original C source's DEFAULT_STACK_SIZE: 64 KiB,
// chosen there because the platform-documented minimum (SIGSTKSZ) proved
// too small in practice on Linux. Go goroutine stacks grow on demand, so
// this module does not preallocate a buffer of this size; it is retained
// purely as an API-fidelity and diagnostics knob (see Task.StackSizeHint).
const DefaultStackSize = 64 * 1024

// loopConfig holds resolved configuration for NewLoop, following the
// LoopOption/loopOptionImpl/resolveLoopOptions pattern of
// joeycumines-go-utilpkg/eventloop/options.go.
type loopConfig struct {
	logger *logiface.Logger[logiface.Event]
}

// LoopOption configures a Loop at construction time.
type LoopOption interface {
	applyLoop(*loopConfig)
}

type loopOptionFunc func(*loopConfig)

func (f loopOptionFunc) applyLoop(c *loopConfig) { f(c) }

// WithLogger attaches a structured logger to the loop. Every task, future,
// and poller created against this loop shares it. If omitted, NewLoop
// builds a default logger (see DefaultLogger) at LevelInformational,
// writing to os.Stderr via stumpy.
func WithLogger(logger *logiface.Logger[logiface.Event]) LoopOption {
	return loopOptionFunc(func(c *loopConfig) {
		c.logger = logger
	})
}

func resolveLoopOptions(opts []LoopOption) *loopConfig {
	cfg := &loopConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyLoop(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = DefaultLogger()
	}
	return cfg
}

