package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/auth"
	"marketplace/internal/config"
	"marketplace/internal/entity"
	"marketplace/internal/model"
	"marketplace/internal/service"
	"marketplace/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HTTPHandler holds the dependencies shared by every route.
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	storeTimeout      time.Duration
	authManager       *auth.Manager

	credentials *service.CredentialService
	catalog     *service.CatalogService
	orders      *service.OrderService
}

// NewHTTPHandler wires the services on top of repo and store.
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage) (*HTTPHandler, error) {
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenExpiry())
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		storeTimeout:      cfg.StoreTimeout(),
		authManager:       authManager,
		credentials:       service.NewCredentialService(repo, store, cfg.BcryptCost),
		catalog:           service.NewCatalogService(repo, store, cfg.MediaMaxBytes),
		orders:            service.NewOrderService(repo),
	}, nil
}

// RegisterRoutes installs middleware and every route on r.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	registerValidatorTagNames()

	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(gin.CustomRecovery(recoverPanic))
	r.NoRoute(noRoute)

	r.GET("/health", h.Health)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/users/:id", h.GetUserProfile)

	protected := r.Group("")
	protected.Use(h.AuthMiddleware())
	protected.GET("/me", h.Me)
	protected.POST("/buy/:product_id", h.Buy)
	protected.GET("/my-orders", h.MyOrders)

	protected.POST("/products", h.RequireRoles(entity.RoleSeller, entity.RoleAdmin), h.CreateProduct)
	protected.PATCH("/products/:id", h.UpdateProduct)
	protected.DELETE("/products/:id", h.DeleteProduct)
	protected.POST("/products/:id/media", h.UploadProductMedia)

	userAdmin := protected.Group("/users")
	userAdmin.Use(h.RequireRoles(entity.RoleAdmin))
	userAdmin.GET("", h.ListUsers)
	userAdmin.PATCH("/:id", h.UpdateUser)
	userAdmin.DELETE("/:id", h.DeleteUser)

	if localProvider, ok := h.storage.(storage.LocalBaseDirProvider); ok {
		if !strings.HasPrefix(h.storagePublicBase, "http://") && !strings.HasPrefix(h.storagePublicBase, "https://") {
			media := r.Group(h.storagePublicBase, MediaHeadersMiddleware())
			media.Static("", localProvider.LocalBaseDir())
		}
	}
}

// storeContext bounds the repository work done by one request.
func (h *HTTPHandler) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := h.storeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// Health reports whether the database answers a ping.
func (h *HTTPHandler) Health(c *gin.Context) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	if h.repo == nil {
		unhealthy(c, "database is not configured")
		return
	}
	if err := h.repo.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("health check failed")
		unhealthy(c, "database is unreachable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// unhealthy is the 503 error body plus the status field health probes read.
func unhealthy(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
		"status": "unhealthy",
		"code":   ErrCodeServiceUnavailable,
		"detail": detail,
	})
}

// normalisePublicBase cleans the configured media URL prefix.
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}
