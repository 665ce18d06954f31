package middleware

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/logger"
)

const identityKey = "tasktracker.identity"

// IdentityResolver turns a bearer token into the authenticated user.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*domain.User, error)
}

// BearerAuth rejects requests without a resolvable bearer token and stores the
// resolved user on the request for Identity.
func BearerAuth(resolver IdentityResolver, adapter *httpcontext.Adapter, log *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString, ok := extractToken(ctx)
			if !ok {
				Unauthorized(ctx, domain.ErrInvalidCredentials.Message)
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			user, err := resolver.ResolveIdentity(stdCtx, tokenString)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					Unauthorized(ctx, domain.ErrInvalidCredentials.Message)
					return
				}
				logger.WithRequestID(stdCtx, log).Error("identity resolution failed", zap.Error(err))
				transport.WriteJSON(ctx, fasthttp.StatusInternalServerError,
					transport.NewError(string(domain.ErrCodeInternal), "internal error", nil))
				return
			}

			ctx.SetUserValue(identityKey, user)
			next(ctx)
		}
	}
}

// Identity returns the user resolved by BearerAuth, or nil outside protected routes.
func Identity(ctx *fasthttp.RequestCtx) *domain.User {
	user, _ := ctx.UserValue(identityKey).(*domain.User)
	return user
}

// Unauthorized writes a 401 carrying the bearer challenge.
func Unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.Set("WWW-Authenticate", "Bearer")
	transport.WriteJSON(ctx, fasthttp.StatusUnauthorized,
		transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
}

func extractToken(ctx *fasthttp.RequestCtx) (string, bool) {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
