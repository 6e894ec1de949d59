package middleware

import (
	"context"
	"net/http"

	"github.com/baechuer/event-hub/internal/application/hub"
	"github.com/baechuer/event-hub/internal/infrastructure/security"
	appCtx "github.com/baechuer/event-hub/internal/pkg/context"
	"github.com/baechuer/event-hub/internal/transport/http/response"
)

// HeaderContextToken echoes a freshly issued token for clients that don't keep cookies.
const HeaderContextToken = "X-Context-Token"

type ContextOptions struct {
	CookieName string
	Secure     bool
}

// BrowserContext resolves the caller's browser context from the bearer
// header or cookie. A missing or invalid token starts a new context.
func BrowserContext(signer *security.ContextSigner, opts ContextOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid, err := signer.Verify(security.ReadContextToken(r, opts.CookieName))
			if err != nil {
				var token string
				token, cid, err = signer.Issue()
				if err != nil {
					response.Err(w, r, err)
					return
				}
				security.SetContextCookie(w, opts.CookieName, token, signer.TTL(), opts.Secure)
				w.Header().Set(HeaderContextToken, token)
			}

			next.ServeHTTP(w, r.WithContext(appCtx.WithContextID(r.Context(), cid)))
		})
	}
}

type workspaceKey struct{}

// Workspace opens the context's workspace once per request.
func Workspace(h *hub.Hub) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws, err := h.Open(r.Context(), appCtx.GetContextID(r.Context()))
			if err != nil {
				response.Err(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), workspaceKey{}, ws)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WorkspaceFrom(ctx context.Context) (*hub.Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey{}).(*hub.Workspace)
	return ws, ok
}
