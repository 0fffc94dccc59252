package reqctx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type ctxKey int

const (
	keyRequestMeta ctxKey = iota
	keyOperator
)

// RequestMeta holds per-request metadata set by HTTP middleware.
type RequestMeta struct {
	RequestID   string
	ClientIP    string
	UserAgent   string
	RequestedAt time.Time
}

func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

func RequestMetaFromContext(ctx context.Context) (*RequestMeta, bool) {
	meta, ok := ctx.Value(keyRequestMeta).(*RequestMeta)
	return meta, ok && meta != nil
}

// RequestIDFromContext returns "" when no metadata is attached.
func RequestIDFromContext(ctx context.Context) string {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok {
		return ""
	}
	return meta.RequestID
}

// Operator is the signed-in salon operator. The token is opaque here; the
// backend issued it and the backend verifies it.
type Operator struct {
	Token string
}

// SessionKey identifies the operator without exposing the token, e.g. as a
// cache partition or log attribute.
func (o Operator) SessionKey() string {
	sum := sha256.Sum256([]byte(o.Token))
	return hex.EncodeToString(sum[:8])
}

func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, keyOperator, op)
}

func OperatorFromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(keyOperator).(Operator)
	return op, ok && op.Token != ""
}
