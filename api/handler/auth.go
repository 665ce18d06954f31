package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a user
// @Tags users
// @Router /users/ [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.UserCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Register(stdCtx, req.Username, req.Password)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewUserResponse(user))
}

// @Summary Exchange form credentials for a bearer token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Router /token [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	args := ctx.PostArgs()
	if !args.Has("username") || !args.Has("password") {
		h.respondInvalid(ctx, "username and password form fields are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, err := h.uc.Login(stdCtx, string(args.Peek("username")), string(args.Peek("password")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}
