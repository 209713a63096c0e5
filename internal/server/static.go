package server

import (
	"embed"
	"io/fs"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

//go:embed assets
var assetsFS embed.FS

// mountStatic serves stylesheets and scripts under /static. A configured
// directory takes precedence over the assets compiled into the binary.
func (s *Server) mountStatic() {
	if s.staticDir != "" {
		info, err := os.Stat(s.staticDir)
		if err == nil && info.IsDir() {
			s.engine.StaticFS("/static", gin.Dir(s.staticDir, false))
			return
		}
		s.logger.Warn("static directory missing; using embedded assets", "path", s.staticDir, "error", err)
	}

	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		s.logger.Error("embedded assets unavailable", "error", err)
		return
	}
	s.engine.StaticFS("/static", http.FS(sub))
}
