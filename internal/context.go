package internal

import "context"

type ctxKey int

const ctxKeyCorrelationId ctxKey = iota

// CtxWithCorrelationId stores the correlation id in the context, a new
// id is generated when none is provided so log lines can always be tied
// back to a single request
func CtxWithCorrelationId(ctx context.Context, correlationId string) context.Context {
	if correlationId == "" {
		correlationId = GenerateId()
	}
	return context.WithValue(ctx, ctxKeyCorrelationId, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if correlationId, ok := ctx.Value(ctxKeyCorrelationId).(string); ok {
		return correlationId
	}
	return ""
}
