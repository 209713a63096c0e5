package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"todoweb/internal/display"
	"todoweb/internal/models"
)

// handleList renders all todos, optionally narrowed by the q search parameter.
func (s *Server) handleList(c *gin.Context) {
	ctx := c.Request.Context()
	query := c.Query("q")

	todos, err := s.store.List(ctx, query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	completed, err := s.store.CountCompleted(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}

	now := s.now()
	views := make([]todoView, 0, len(todos))
	for _, t := range todos {
		views = append(views, todoView{Todo: t, DisplayDate: display.FormatDate(t.CreatedAt, now)})
	}

	c.HTML(http.StatusOK, "index.html", listPage{
		page:    page{PageTitle: "My Todos", Query: query},
		Todos:   views,
		Summary: display.Summarize(total, completed),
	})
}

// handleAddForm renders the empty creation form.
func (s *Server) handleAddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add.html", formPage{page: page{PageTitle: "Add Todo"}})
}

// handleAddSubmit creates a todo. When a field is missing the form is shown
// again without a message, matching how the page has always behaved.
func (s *Server) handleAddSubmit(c *gin.Context) {
	title, _ := postForm(c, "title")
	description, _ := postForm(c, "description", "desc")

	if title == "" || description == "" {
		s.handleAddForm(c)
		return
	}

	if _, err := s.store.Create(c.Request.Context(), title, description); err != nil {
		s.respondError(c, err)
		return
	}
	s.redirectHome(c)
}

// handleEditForm renders the edit form for an existing todo.
func (s *Server) handleEditForm(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	todo, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.HTML(http.StatusOK, "update.html", formPage{page: page{PageTitle: "Update Todo"}, Todo: &todo})
}

// handleEditSubmit replaces the title and description of a todo.
// Both fields must be submitted.
func (s *Server) handleEditSubmit(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	title, hasTitle := postForm(c, "title")
	description, hasDescription := postForm(c, "description", "desc")

	var missing []string
	if !hasTitle {
		missing = append(missing, "title")
	}
	if !hasDescription {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		s.respondError(c, &models.ValidationError{Fields: missing})
		return
	}

	if _, err := s.store.Update(c.Request.Context(), id, title, description); err != nil {
		s.respondError(c, err)
		return
	}
	s.redirectHome(c)
}

// handleDelete removes a todo permanently.
func (s *Server) handleDelete(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	s.redirectHome(c)
}

// handleToggle flips the completed flag. Unknown ids are ignored.
func (s *Server) handleToggle(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	if _, err := s.store.ToggleCompleted(c.Request.Context(), id); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.respondError(c, err)
			return
		}
		s.logger.Debug("toggle skipped for unknown todo", slog.Int64("id", id))
	}
	s.redirectHome(c)
}

func (s *Server) handleAbout(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", page{PageTitle: "About"})
}

// postForm returns the first form field among keys that was submitted.
func postForm(c *gin.Context, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := c.GetPostForm(key); ok {
			return v, true
		}
	}
	return "", false
}
