package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tasktracker/domain"
)

func queryArgs(raw string) *fasthttp.Args {
	var args fasthttp.Args
	args.Parse(raw)
	return &args
}

func TestParseListOptions(t *testing.T) {
	opts, err := parseListOptions(queryArgs("skip=2&limit=5&sort_by=title&search=milk&top_priority=3"))
	if err != nil {
		t.Fatal(err)
	}
	if opts.Skip != 2 || opts.Limit == nil || *opts.Limit != 5 || opts.SortBy != "title" ||
		opts.Search != "milk" || opts.TopPriority != 3 {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = parseListOptions(queryArgs(""))
	if err != nil {
		t.Fatal(err)
	}
	if opts.Limit != nil || opts.Skip != 0 || opts.TopPriority != 0 {
		t.Fatalf("defaults must be left to the use case, got %+v", opts)
	}

	for _, raw := range []string{"skip=x", "limit=1.5", "top_priority=", "limit="} {
		if _, err := parseListOptions(queryArgs(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseListOptionsKeepsNegativesForValidation(t *testing.T) {
	opts, err := parseListOptions(queryArgs("limit=-1"))
	if err != nil {
		t.Fatal(err)
	}
	if opts.Limit == nil || *opts.Limit != -1 {
		t.Fatalf("limit = %v", opts.Limit)
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrInvalidPayload, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.NewError(domain.ErrCodeForbidden, "no"), http.StatusForbidden},
		{fmt.Errorf("update: %w", domain.ErrTaskNotFound), http.StatusNotFound},
		{domain.ErrUsernameTaken, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if status, _ := mapError(tc.err); status != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, status, tc.status)
		}
	}
}
