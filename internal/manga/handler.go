package manga

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mangashelf/internal/sync"
	"mangashelf/pkg/models"
)

const msgNotFound = "Manga not found"

type Handler struct {
	Store Store
	Hub   *sync.Hub
	Log   *zap.Logger
}

func NewHandler(store Store, hub *sync.Hub, log *zap.Logger) *Handler {
	return &Handler{Store: store, Hub: hub, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/stats", h.stats)
	rg.GET("/facets", h.facets)
	rg.DELETE("/bulk-delete", h.bulkDelete)
	rg.POST("/bulk-delete", h.bulkDelete)
	rg.GET("/:id", h.getByID)
	rg.PUT("/:id", h.update)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	page, err := h.Store.Query(c.Request.Context(), ParseQuery(c))
	if err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}
	OK(c, http.StatusOK, page, "Manga retrieved successfully")
}

func (h *Handler) create(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	in, err := Normalize(Fields(body))
	if err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}

	m, err := h.Store.Create(c.Request.Context(), in)
	if err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}
	h.Hub.Publish(sync.EventCreated, 1, m.ID)
	OK(c, http.StatusCreated, m, "Manga created successfully")
}

func (h *Handler) getByID(c *gin.Context) {
	m, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}
	OK(c, http.StatusOK, m, "Manga retrieved successfully")
}

func (h *Handler) update(c *gin.Context) {
	var patch models.MangaPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := ValidatePatch(patch); err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}

	m, err := h.Store.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}
	h.Hub.Publish(sync.EventUpdated, 1, m.ID)
	OK(c, http.StatusOK, m, "Manga updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}
	h.Hub.Publish(sync.EventDeleted, 1, id)
	OK(c, http.StatusOK, gin.H{"id": id}, "Manga deleted successfully")
}

type bulkDeleteReq struct {
	IDs []string `json:"ids"`
}

func (h *Handler) bulkDelete(c *gin.Context) {
	var req bulkDeleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid or empty ids array")
		return
	}
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		Fail(c, http.StatusBadRequest, "Invalid or empty ids array")
		return
	}

	n, err := h.Store.DeleteMany(c.Request.Context(), ids)
	if err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}
	h.Hub.Publish(sync.EventDeleted, n, ids...)
	OK(c, http.StatusOK, gin.H{"deleted": n}, fmt.Sprintf("%d manga deleted successfully", n))
}

func (h *Handler) stats(c *gin.Context) {
	all, err := h.Store.All(c.Request.Context())
	if err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}
	OK(c, http.StatusOK, Aggregate(all), "Statistics retrieved successfully")
}

func (h *Handler) facets(c *gin.Context) {
	all, err := h.Store.All(c.Request.Context())
	if err != nil {
		RespondError(c, h.Log, err, msgNotFound)
		return
	}
	OK(c, http.StatusOK, BuildFacets(all), "Filter options retrieved successfully")
}

// ParseQuery reads the query engine parameters from the URL.
func ParseQuery(c *gin.Context) Query {
	pageSize := c.Query("pageSize")
	if pageSize == "" {
		pageSize = c.Query("limit")
	}
	return Query{
		Search:        c.Query("search"),
		Genre:         c.Query("genre"),
		Author:        firstNonEmpty(c.Query("author"), c.Query("autor")),
		Publisher:     firstNonEmpty(c.Query("publisher"), c.Query("verlag")),
		Language:      firstNonEmpty(c.Query("language"), c.Query("sprache")),
		Volume:        firstNonEmpty(c.Query("volume"), c.Query("band")),
		Status:        c.Query("status"),
		SortKey:       firstNonEmpty(c.Query("sortKey"), c.Query("sort")),
		SortDirection: firstNonEmpty(c.Query("sortDirection"), c.Query("order")),
		Page:          parseInt(c.Query("page"), 1),
		PageSize:      parseInt(pageSize, DefaultPageSize),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	const maxParam = 1 << 30
	if n > maxParam {
		return maxParam
	}
	return n
}
