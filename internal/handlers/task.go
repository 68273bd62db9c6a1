package handlers

import (
	"errors"
	"net/http"
	"strconv"

	dom "taskboard/internal/domain"
	"taskboard/internal/dto"
	"taskboard/internal/repo"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Create(c.Request.Context(), service.CreateFields{Name: req.Name, Completed: req.Completed})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// List godoc
// @Summary      List tasks
// @Description  Returns a bare JSON array. The optional completed flag filters by state.
// @Tags         tasks
// @Produce      json
// @Param        completed  query     bool  false  "Filter by completion"
// @Success      200        {array}   dto.TaskResponse
// @Failure      400        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	f, ok := parseCompletedFilter(c)
	if !ok {
		return
	}
	var (
		list []dom.Task
		err  error
	)
	switch {
	case f.Completed == nil:
		list, err = h.svc.Find(c.Request.Context(), f)
	case *f.Completed:
		list, err = h.svc.FindCompleted(c.Request.Context())
	default:
		list, err = h.svc.FindPending(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasksToResponses(list))
}

// Completed godoc
// @Summary      List completed tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   dto.TaskResponse
// @Failure      500  {object}  map[string]string
// @Router       /tasks/completed [get]
func (h *TaskHandler) Completed(c *gin.Context) {
	list, err := h.svc.FindCompleted(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasksToResponses(list))
}

// Pending godoc
// @Summary      List pending tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   dto.TaskResponse
// @Failure      500  {object}  map[string]string
// @Router       /tasks/pending [get]
func (h *TaskHandler) Pending(c *gin.Context) {
	list, err := h.svc.FindPending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasksToResponses(list))
}

// GetByID godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task UUID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	t, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*t))
}

// Update godoc
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task UUID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := h.lookup(c)
	if !ok {
		return
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}
	saved, err := h.svc.Save(c.Request.Context(), *t)
	if err != nil {
		writeError(c, err)
		return
	}
	if saved == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*saved))
}

// Toggle godoc
// @Summary      Flip the completion state of a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task UUID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	t, ok := h.lookup(c)
	if !ok {
		return
	}
	saved, err := h.svc.ToggleCompletion(c.Request.Context(), *t)
	if err != nil {
		writeError(c, err)
		return
	}
	if saved == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*saved))
}

// Overdue godoc
// @Summary      Check whether a task is overdue against a due date
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task UUID"
// @Param        due  query     string  true  "Due date (YYYY-MM-DD or RFC3339)"
// @Success      200  {object}  dto.OverdueResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/overdue [get]
func (h *TaskHandler) Overdue(c *gin.Context) {
	var due dto.DueAt
	if err := due.UnmarshalText([]byte(c.Query("due"))); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if due.Ptr() == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due is required"})
		return
	}
	t, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.OverdueResponse{Overdue: t.IsOverdue(*due.Ptr())})
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Param        id   path  string  true  "Task UUID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	deleted, err := h.svc.DeleteByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMany godoc
// @Summary      Delete tasks by completion state
// @Tags         tasks
// @Produce      json
// @Param        completed  query     bool  true  "Completion state to delete"
// @Success      200        {object}  dto.DeleteManyResponse
// @Failure      400        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /tasks [delete]
func (h *TaskHandler) DeleteMany(c *gin.Context) {
	f, ok := parseCompletedFilter(c)
	if !ok {
		return
	}
	// Refuse to wipe the collection by accident.
	if f.Completed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "completed is required"})
		return
	}
	n, err := h.svc.DeleteMany(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteManyResponse{Deleted: n})
}

func (h *TaskHandler) lookup(c *gin.Context) (*dom.Task, bool) {
	t, err := h.svc.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	return t, true
}

func parseCompletedFilter(c *gin.Context) (repo.Filter, bool) {
	raw, present := c.GetQuery("completed")
	if !present {
		return repo.Filter{}, true
	}
	done, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "completed must be true or false"})
		return repo.Filter{}, false
	}
	return repo.ByCompleted(done), true
}

func writeError(c *gin.Context, err error) {
	var (
		ve *dom.ValidationError
		ce *dom.CastError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &ce):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func taskToResponse(t dom.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:        t.Number,
		UUID:      t.ID.String(),
		Name:      t.Name,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func tasksToResponses(list []dom.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}
