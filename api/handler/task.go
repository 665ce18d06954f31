package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Param skip query int false "rows to skip"
// @Param limit query int false "max rows"
// @Param sort_by query string false "title, status or created_at"
// @Param search query string false "substring of title or description"
// @Param top_priority query int false "keep only the N highest priority tasks"
// @Router /tasks/ [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	owner, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	opts, err := parseListOptions(ctx.QueryArgs())
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, owner, opts)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTaskListResponse(tasks))
}

// @Summary Create task
// @Tags tasks
// @Router /tasks/ [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	owner, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if req.Title == nil {
		h.respondInvalid(ctx, "title is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, owner, taskUC.CreateInput{
		Title:       *req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTaskResponse(created))
}

// @Summary Partially update task
// @Tags tasks
// @Router /tasks/{task_id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	owner, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	taskID, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, owner, taskID, req.Patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTaskResponse(updated))
}

// @Summary Delete task
// @Tags tasks
// @Router /tasks/{task_id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	owner, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	taskID, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, owner, taskID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Message: "Task deleted"})
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("task_id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondInvalid(ctx, "task_id must be an integer")
		return 0, false
	}
	return id, true
}

func parseListOptions(args *fasthttp.Args) (taskUC.ListOptions, error) {
	opts := taskUC.ListOptions{
		SortBy: string(args.Peek("sort_by")),
		Search: string(args.Peek("search")),
	}

	var err error
	if opts.Skip, err = intArg(args, "skip", 0); err != nil {
		return opts, err
	}
	if opts.TopPriority, err = intArg(args, "top_priority", 0); err != nil {
		return opts, err
	}
	if args.Has("limit") {
		limit, err := intArg(args, "limit", taskUC.DefaultListLimit)
		if err != nil {
			return opts, err
		}
		opts.Limit = &limit
	}
	return opts, nil
}

func intArg(args *fasthttp.Args, name string, fallback int) (int, error) {
	if !args.Has(name) {
		return fallback, nil
	}
	v, err := strconv.Atoi(string(args.Peek(name)))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
