package green

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// DefaultLogger builds the structured logger NewLoop uses when the caller
// doesn't supply one via WithLogger: a stumpy-backed logiface.Logger,
// writing newline-delimited JSON to os.Stderr at LevelInformational and
// above. This mirrors how joeycumines-go-utilpkg's own tests wire up
// logiface — logiface.New[*stumpy.Event](stumpy.WithStumpy()), converted to
// the type-erased *logiface.Logger[logiface.Event] via Logger().
func DefaultLogger() *logiface.Logger[logiface.Event] {
	return logiface.New[*stumpy.Event](
		stumpy.WithStumpy(),
		logiface.WithLevel[*stumpy.Event](logiface.LevelInformational),
	).Logger()
}

// noopLogger is used wherever a logger field would otherwise be nil — for
// example, package-internal helpers constructed without going through
// NewLoop's option resolution, such as in unit tests exercising
// sub-components directly.
func noopLogger() *logiface.Logger[logiface.Event] {
	return logiface.New[*stumpy.Event](
		stumpy.WithStumpy(stumpy.WithWriter(io.Discard)),
		logiface.WithLevel[*stumpy.Event](logiface.LevelDisabled),
	).Logger()
}
