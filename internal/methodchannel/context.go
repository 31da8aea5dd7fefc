package methodchannel

import "context"

type idempotencyKeyCtx struct{}

// WithIdempotencyKey returns a copy of ctx carrying the caller's
// idempotency key. Every delivery of one logical call carries the same key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// IdempotencyKey returns the key stored by WithIdempotencyKey, or "".
func IdempotencyKey(ctx context.Context) string {
	s, _ := ctx.Value(idempotencyKeyCtx{}).(string)
	return s
}
