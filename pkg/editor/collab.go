package editor

import (
	"context"
	"errors"
)

// ErrExit is returned by an Evaluator when the submitted code asked the
// process to exit. The session turns it into a clean shutdown.
var ErrExit = errors.New("exit requested")

// ErrInterrupt is returned by an Evaluator when the user interrupted an
// in-flight submission. The session cancels the turn and redisplays a clean
// prompt; history keeps whatever it had before the submission started.
var ErrInterrupt = errors.New("interrupted")

// Evaluator runs submitted source. needsMore reports that the text so far is
// an incomplete construct and the turn should collect another line. Output
// produced by the evaluated code goes to the writer the evaluator was built
// with, not through this interface.
type Evaluator interface {
	Submit(ctx context.Context, text string) (needsMore bool, err error)
}

// Segment is one styled span of a tokenized line.
type Segment struct {
	Style string
	Text  string
}

// Tokenizer colors one line at a time. isContinuation distinguishes the
// first line of a turn from continuation lines so indentation-sensitive
// lexers keep their state sane.
type Tokenizer interface {
	Tokenize(text string, isContinuation bool) []Segment
}

// LookupResult is everything the completion engine needs for one query.
type LookupResult struct {
	Candidates []string
	Callable   bool
	Spec       *ArgSpec
	Doc        string
}

// Lookup resolves a dotted name against the live namespace. Implementations
// must contain side effects of attribute access: a panic or error during the
// walk means "no match", never a crash.
type Lookup interface {
	Lookup(dotted string) (LookupResult, error)
	// Prefetch performs one small bounded unit of background candidate
	// warm-up and reports whether more work remains. Called from the idle
	// tick; it must never block.
	Prefetch() bool
}
