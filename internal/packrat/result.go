package packrat

import "fmt"

// Failure is the reason a parser did not match. Pos is the offset in the
// source the failure is reported at, which may lie past the position the
// failing parser was started at.
type Failure struct {
	Message string
	Pos     int

	// Score is how specific the failure is. When several alternatives fail,
	// the one with the highest score is the one reported.
	Score int
}

func (f Failure) String() string {
	return fmt.Sprintf("%s (at %d, score %d)", f.Message, f.Pos, f.Score)
}

type resultKind int

const (
	resultSuccess resultKind = iota
	resultFailure
	resultSeed
)

// Result is the outcome of applying a parser. It is exactly one of a success
// carrying a value and the position just past the consumed input, a failure,
// or the left-recursion seed placeholder, which behaves as a failure to
// everything outside of this package.
type Result[T any] struct {
	kind  resultKind
	value T
	end   int
	fail  Failure
}

// Success returns a successful Result ending at end.
func Success[T any](v T, end int) Result[T] {
	return Result[T]{kind: resultSuccess, value: v, end: end}
}

// Fail returns a failed Result.
func Fail[T any](msg string, pos int, score int) Result[T] {
	return Result[T]{kind: resultFailure, fail: Failure{Message: msg, Pos: pos, Score: score}}
}

func failWith[T any](f Failure) Result[T] {
	return Result[T]{kind: resultFailure, fail: f}
}

func seedResult[T any](pos int) Result[T] {
	return Result[T]{kind: resultSeed, fail: Failure{Message: "left recursion", Pos: pos, Score: -1}}
}

// Ok returns whether the result is a success.
func (r Result[T]) Ok() bool {
	return r.kind == resultSuccess
}

// IsSeed returns whether the result is the left-recursion placeholder.
func (r Result[T]) IsSeed() bool {
	return r.kind == resultSeed
}

// Value returns the parsed value. It is the zero value of T if the result is
// not a success.
func (r Result[T]) Value() T {
	return r.value
}

// End returns the position just past the consumed input. Only meaningful for
// successes.
func (r Result[T]) End() int {
	return r.end
}

// Failure returns the failure of an unsuccessful result. The second return
// value is false if the result is a success.
func (r Result[T]) Failure() (Failure, bool) {
	if r.kind == resultSuccess {
		return Failure{}, false
	}
	return r.fail, true
}

func (r Result[T]) String() string {
	switch r.kind {
	case resultSuccess:
		return fmt.Sprintf("success(%v, %d)", r.value, r.end)
	case resultSeed:
		return fmt.Sprintf("seed(%d)", r.fail.Pos)
	default:
		return "failure(" + r.fail.String() + ")"
	}
}

// failureOf is Failure for results whose type is not statically known.
type failureOf interface {
	Failure() (Failure, bool)
	IsSeed() bool
}
