package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// AccessLog assigns the request ID before any handler runs and logs one line per request.
func AccessLog(log *zap.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		reqID := httpcontext.RequestID(ctx)

		next(ctx)

		log.Info("request",
			zap.String("request_id", reqID),
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("duration", time.Since(start)))
	}
}
