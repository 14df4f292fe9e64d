package middleware

import "context"

type ctxKey int

const (
	subjectKey ctxKey = iota
	requestIDKey
)

func InjectSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey, sub)
}

// Subject is the authenticated token subject, empty when auth is off.
func Subject(ctx context.Context) string {
	v, _ := ctx.Value(subjectKey).(string)
	return v
}

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
