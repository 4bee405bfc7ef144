package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var devOrigins = []string{
	"http://localhost:80",
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:5174",
	"http://127.0.0.1:80",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:5174",
}

// CORS allows the given origins, the local dev servers when none are
// configured, or every origin (without credentials) for "*".
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-Id", "X-Trace-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
	}

	var cleaned []string
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	switch {
	case len(cleaned) == 0:
		cfg.AllowOrigins = devOrigins
	case len(cleaned) == 1 && cleaned[0] == "*":
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	default:
		cfg.AllowOrigins = cleaned
	}
	return cors.New(cfg)
}
