package retry

import "context"

// retrierKey is the key for the retrier in the context.
type retrierKey struct{}

// ToContext returns a context carrying the given retrier.
func ToContext(ctx context.Context, retrier Retrier) context.Context {
	return context.WithValue(ctx, retrierKey{}, retrier)
}

// FromContext returns the retrier carried by the context, or a NoopRetrier
// when none is set, so transport code always has one to consult.
func FromContext(ctx context.Context) Retrier {
	retrier, ok := ctx.Value(retrierKey{}).(Retrier)
	if !ok {
		return NoopRetrier{}
	}
	return retrier
}
