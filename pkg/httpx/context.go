package httpx

import "context"

type ctxKey string

const ctxKeySubject ctxKey = "subject"

// ContextWithSubject records the authenticated subject (user id) so
// generic middleware such as per-user rate limiting can key on it.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, subject)
}

// SubjectFromContext returns the subject set by ContextWithSubject.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySubject).(string); ok {
		return v
	}
	return ""
}
