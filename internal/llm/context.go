package llm

import "context"

type purposeKey struct{}

// WithPurpose tags calls made with ctx, e.g. "artifact-gen", so recorded
// request events can be grouped by what they were for.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "untagged".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "untagged"
}
