package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"todoweb/internal/models"
)

// TodoStore is the persistence the handlers depend on.
type TodoStore interface {
	List(ctx context.Context, query string) ([]models.Todo, error)
	Count(ctx context.Context) (int, error)
	CountCompleted(ctx context.Context) (int, error)
	Create(ctx context.Context, title, description string) (models.Todo, error)
	Get(ctx context.Context, id int64) (models.Todo, error)
	Update(ctx context.Context, id int64, title, description string) (models.Todo, error)
	ToggleCompleted(ctx context.Context, id int64) (models.Todo, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Options tunes optional server behaviour.
type Options struct {
	// StaticDir overrides the embedded assets with files from disk.
	StaticDir string
	// Now is the clock used for relative dates. Defaults to time.Now.
	Now func() time.Time
}

// Server provides the HTML handlers of the todo application.
type Server struct {
	engine    *gin.Engine
	store     TodoStore
	logger    *slog.Logger
	staticDir string
	now       func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(store TodoStore, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:    router,
		store:     store,
		logger:    logger,
		staticDir: opts.StaticDir,
		now:       opts.Now,
	}

	router.Use(requestID(), srv.accessLog())
	router.SetHTMLTemplate(parseTemplates())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all page and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleList)
	s.engine.GET("/add", s.handleAddForm)
	s.engine.POST("/add", s.handleAddSubmit)
	s.engine.GET("/update/:id", s.handleEditForm)
	s.engine.POST("/update/:id", s.handleEditSubmit)
	s.engine.GET("/delete/:id", s.handleDelete)
	s.engine.GET("/complete/:id", s.handleToggle)
	s.engine.GET("/about", s.handleAbout)
	s.engine.GET("/healthz", s.handleHealth)

	s.engine.NoRoute(func(c *gin.Context) {
		s.respondError(c, models.ErrNotFound)
	})

	s.mountStatic()
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts the id path parameter. Anything but a positive integer
// is answered with the not found page.
func (s *Server) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(c, models.ErrNotFound)
		return 0, false
	}
	return id, true
}

// respondError maps err to a status code and renders the error page.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong. Please try again."

	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		message = "The page or todo you were looking for does not exist."
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		s.logger.Error("request failed", slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
	}

	c.HTML(status, "error.html", errorPage{
		page:    page{PageTitle: http.StatusText(status)},
		Status:  status,
		Message: message,
	})
}

func (s *Server) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}
