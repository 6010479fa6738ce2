package model

import "context"

type ctxOrganizationIDKey struct{}

// ContextWithOrganizationID returns a context carrying the caller's organization
func ContextWithOrganizationID(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, ctxOrganizationIDKey{}, organizationID)
}

// OrganizationIDFromContext returns the organization of the caller. ok is false
// when no organization was set or it is empty.
func OrganizationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxOrganizationIDKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
