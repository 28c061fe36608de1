package router

import (
	"net/http"
	"strings"

	httpmiddleware "github.com/oakpoint-health/clinic-core/internal/http/middleware"
	"github.com/oakpoint-health/clinic-core/internal/tenancy"
)

const orgHeader = "X-Org-Id"

// requireOrgID middleware enforces multi-tenancy headers for API requests.
func requireOrgID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := strings.TrimSpace(r.Header.Get(orgHeader))
		if orgID == "" {
			http.Error(w, "missing X-Org-Id", http.StatusBadRequest)
			return
		}
		ctx := tenancy.WithOrgID(r.Context(), orgID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdminOrg resolves tenancy for admin routes. Staff tokens carry
// the clinic org id in their org_id claim; when a token has no org scope
// the X-Org-Id header still applies.
func requireAdminOrg(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := httpmiddleware.AdminClaimsFromContext(r.Context()); ok {
			if orgID := strings.TrimSpace(claims.OrgID); orgID != "" {
				ctx := tenancy.WithOrgID(r.Context(), orgID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}
		requireOrgID(next).ServeHTTP(w, r)
	})
}
