// Package results holds the tagged outcome type returned by service operations.
//
// An operation yields one of three things: a Success value, a Failure value
// (a business rejection the caller can show to a user), or a non-nil error
// returned alongside the result (an infrastructure failure).
package results

// OperationResult carries either a Success or a Failure payload.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult builds a result holding s.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult builds a result holding f.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

func (r OperationResult[S, F]) IsSuccess() bool { return r.Success != nil }

func (r OperationResult[S, F]) IsFailure() bool { return r.Failure != nil }
