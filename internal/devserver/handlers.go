package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/storage"
)

const maxTitleLength = 500

func toModel(t storage.Task) model.Task {
	return model.Task{
		ID:          model.ID(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// listFilter reads the optional completed, limit and offset query
// parameters. The client never sends them; they serve ad hoc curl use.
func listFilter(c *gin.Context) (storage.TaskListFilter, error) {
	var filter storage.TaskListFilter
	if raw, ok := c.GetQuery("completed"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid completed value %q", raw)
		}
		filter.Completed = &v
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, fmt.Errorf("invalid %s value %q", name, raw)
		}
		*dst = v
	}
	return filter, nil
}

func (s *Server) handleList(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	items, err := s.repo.ListTasks(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("list tasks", "err", err)
		c.JSON(http.StatusInternalServerError, errorBody("failed to list tasks"))
		return
	}
	out := make([]model.Task, 0, len(items))
	for _, item := range items {
		out = append(out, toModel(item))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreate(c *gin.Context) {
	var in model.NewTask
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if len(in.Title) > maxTitleLength {
		c.JSON(http.StatusBadRequest, errorBody("title is too long"))
		return
	}

	now := s.now()
	task := storage.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTask(c.Request.Context(), task); err != nil {
		s.logger.Error("create task", "err", err)
		c.JSON(http.StatusInternalServerError, errorBody("failed to create task"))
		return
	}
	s.logger.Info("task created", "id", task.ID)
	c.JSON(http.StatusCreated, toModel(task))
}

func (s *Server) handleUpdate(c *gin.Context) {
	id := c.Param("id")

	var patch model.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	current, err := s.repo.GetTask(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("task not found"))
		return
	}
	if err != nil {
		s.logger.Error("get task", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, errorBody("failed to load task"))
		return
	}

	next := toModel(current).Apply(patch)
	current.Title = strings.TrimSpace(next.Title)
	current.Description = next.Description
	current.Completed = next.Completed
	current.UpdatedAt = s.now()
	if err := s.repo.UpdateTask(c.Request.Context(), current); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("task not found"))
			return
		}
		s.logger.Error("update task", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, errorBody("failed to update task"))
		return
	}
	c.JSON(http.StatusOK, toModel(current))
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	err := s.repo.DeleteTask(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("task not found"))
		return
	}
	if err != nil {
		s.logger.Error("delete task", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, errorBody("failed to delete task"))
		return
	}
	s.logger.Info("task deleted", "id", id)
	c.Status(http.StatusNoContent)
}
