package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

// OrganizationHeader carries the organization a request acts for
const OrganizationHeader = "X-Organization-ID"

// organizationMiddleware puts the organization of the request and a request
// scoped logger into the context. Requests without organization pass through;
// use cases that need one reject them.
func organizationMiddleware(defaultOrgID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			orgID := strings.TrimSpace(r.Header.Get(OrganizationHeader))
			if orgID == "" {
				orgID = defaultOrgID
			}

			logger := logging.Default().With("request_id", middleware.GetReqID(ctx))
			if orgID != "" {
				ctx = model.ContextWithOrganizationID(ctx, orgID)
				logger = logger.With("organization_id", orgID)
			}
			ctx = logging.With(ctx, logger)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
