package routes

import (
	"net/http"

	"github.com/skyvault/skyvault/internal/app"
	"github.com/skyvault/skyvault/internal/handler"
	"github.com/skyvault/skyvault/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	file := handler.NewFileHandler(app.FileService)
	share := handler.NewShareHandler(app.ShareService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	rateLimiter := middleware.RateLimitAuth(app.Cfg.AuthRateLimit, app.Cfg.AuthRateWindow)

	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Files
	mux.HandleFunc("POST /api/files", middleware.RequireAuth(file.Upload))
	mux.HandleFunc("GET /api/files", middleware.RequireAuth(file.Download))
	mux.HandleFunc("PUT /api/files", middleware.RequireAuth(file.Update))
	mux.HandleFunc("DELETE /api/files", middleware.RequireAuth(file.Remove))
	mux.HandleFunc("POST /api/folders", middleware.RequireAuth(file.CreateFolder))
	mux.HandleFunc("GET /api/files/tree", middleware.RequireAuth(file.Tree))
	mux.HandleFunc("GET /api/files/search", middleware.RequireAuth(file.Search))

	// Sharing
	mux.HandleFunc("POST /api/files/share", middleware.RequireAuth(share.Share))
	mux.HandleFunc("PUT /api/files/share", middleware.RequireAuth(share.UpdatePermission))
	mux.HandleFunc("DELETE /api/files/share", middleware.RequireAuth(share.Unshare))
	mux.HandleFunc("GET /api/files/shared", middleware.RequireAuth(share.Received))
	mux.HandleFunc("GET /api/files/share/users", middleware.RequireAuth(share.Grantees))
	mux.HandleFunc("GET /api/files/share/permission", middleware.RequireAuth(share.Permission))

	// ============================================================================
	// GLOBAL MIDDLEWARE
	// ============================================================================

	return middleware.Chain(
		mux,
		middleware.Recover,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)
}
