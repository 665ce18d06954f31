package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
)

func TestHealthReflectsRequiredProbes(t *testing.T) {
	var dbErr error
	mon := monitor.New(time.Minute, nil,
		monitor.Probe{Name: "postgresql", Required: true, Check: func(context.Context) error { return dbErr }},
	)
	h := NewHealthHandler(mon, nil, nil)

	check := func() int {
		var ctx fasthttp.RequestCtx
		h.Check(&ctx)
		return ctx.Response.StatusCode()
	}

	if got := check(); got != fasthttp.StatusServiceUnavailable {
		t.Fatalf("before the first probe: status = %d", got)
	}

	mon.Refresh(context.Background())
	if got := check(); got != fasthttp.StatusOK {
		t.Fatalf("healthy: status = %d", got)
	}

	dbErr = errors.New("connection refused")
	mon.Refresh(context.Background())
	if got := check(); got != fasthttp.StatusServiceUnavailable {
		t.Fatalf("database down: status = %d", got)
	}
}
