package metadata

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mangashelf/internal/manga"
)

type Handler struct {
	Resolver *Resolver
	Log      *zap.Logger
}

func NewHandler(r *Resolver, log *zap.Logger) *Handler {
	return &Handler{Resolver: r, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/isbn", h.lookup)
	rg.GET("/isbn/:isbn", h.lookup)
}

func (h *Handler) lookup(c *gin.Context) {
	isbn := strings.TrimSpace(c.Param("isbn"))
	if isbn == "" {
		isbn = strings.TrimSpace(c.Query("isbn"))
	}
	if isbn == "" {
		manga.Fail(c, http.StatusBadRequest, "ISBN is required")
		return
	}

	resolve := h.Resolver.Resolve
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		resolve = h.Resolver.Refresh
	}
	md, err := resolve(c.Request.Context(), isbn)
	if err != nil {
		if errors.Is(err, manga.ErrUpstream) {
			h.Log.Warn("isbn lookup failed", zap.String("isbn", isbn), zap.Error(err))
			manga.Fail(c, http.StatusBadGateway, "Metadata provider unavailable")
			return
		}
		manga.RespondError(c, h.Log, err, "No metadata found for this ISBN")
		return
	}
	manga.OK(c, http.StatusOK, md, "Metadata retrieved successfully")
}
