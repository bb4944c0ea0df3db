package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	groupKey   contextKey = "llm_group"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithGroup tags every request made under ctx with a solve session's
// group id, so recorded events can be joined to the session.
func WithGroup(ctx context.Context, groupID string) context.Context {
	return context.WithValue(ctx, groupKey, groupID)
}

// GroupFrom returns the group id set by WithGroup, or "".
func GroupFrom(ctx context.Context) string {
	v, _ := ctx.Value(groupKey).(string)
	return v
}
