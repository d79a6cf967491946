package graph

import (
	"go.uber.org/zap"

	"github.com/blogql/blogql/internal/metrics"
)

// OperationError is the opaque error clients see when a resolver fails for
// any reason other than invalid input. Only its Op reaches the response;
// the cause is logged.
type OperationError struct {
	Op    string // e.g. "create user"
	cause error
}

func (e *OperationError) Error() string {
	return "Failed to " + e.Op + "."
}

func (e *OperationError) Unwrap() error {
	return e.cause
}

// fail logs err and returns the generic error for op.
func (r *Resolver) fail(op string, err error) error {
	r.logger().Error("resolver failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	metrics.ResolverFailure(op)
	return &OperationError{Op: op, cause: err}
}
