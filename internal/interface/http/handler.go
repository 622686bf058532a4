package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/domain/auth"
	"github.com/yanqian/kai-insight/internal/domain/history"
	"github.com/yanqian/kai-insight/internal/domain/preferences"
	"github.com/yanqian/kai-insight/internal/infra/config"
	"github.com/yanqian/kai-insight/pkg/util"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	analysisSvc    analysis.Service
	historySvc     history.Service
	preferencesSvc preferences.Service
	authSvc        auth.Service
	postLoginURL   string
	clock          util.Clock
	logger         *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	cfg *config.Config,
	analysisSvc analysis.Service,
	historySvc history.Service,
	preferencesSvc preferences.Service,
	authSvc auth.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		analysisSvc:    analysisSvc,
		historySvc:     historySvc,
		preferencesSvc: preferencesSvc,
		authSvc:        authSvc,
		postLoginURL:   cfg.Auth.Google.PostLoginRedirectURL,
		logger:         logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
