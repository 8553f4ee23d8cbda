package importer

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mangashelf/internal/manga"
	"mangashelf/internal/sync"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Importer       *Importer
	Hub            *sync.Hub
	Log            *zap.Logger
	MaxUploadBytes int64
}

func NewHandler(im *Importer, hub *sync.Hub, log *zap.Logger, maxUpload int64) *Handler {
	return &Handler{Importer: im, Hub: hub, Log: log, MaxUploadBytes: maxUpload}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.importFile)
	rg.GET("/export", h.export)
}

func (h *Handler) importFile(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			manga.Fail(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		manga.Fail(c, http.StatusBadRequest, "No file provided")
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		manga.Fail(c, http.StatusBadRequest, "Invalid file type. Please upload an Excel file.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		manga.Fail(c, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()

	rows, err := ReadXLSX(f)
	if err != nil {
		h.Log.Warn("unreadable spreadsheet", zap.String("file", fh.Filename), zap.Error(err))
		manga.Fail(c, http.StatusBadRequest, "Unable to read the spreadsheet")
		return
	}

	ctx := c.Request.Context()
	if err := h.Importer.Store.Ping(ctx); err != nil {
		manga.RespondError(c, h.Log, fmt.Errorf("store unavailable: %w", err), "")
		return
	}

	out := h.Importer.Import(ctx, rows)
	if out.Imported > 0 {
		h.Hub.Publish(sync.EventImported, out.Imported, out.IDs...)
	}
	manga.OK(c, http.StatusOK, out, fmt.Sprintf("Successfully imported %d manga", out.Imported))
}

func (h *Handler) export(c *gin.Context) {
	q, err := manga.ParseQuery(c).Normalized()
	if err != nil {
		manga.RespondError(c, h.Log, err, "")
		return
	}

	records, err := Collect(c.Request.Context(), h.Importer.Store, q)
	if err != nil {
		manga.RespondError(c, h.Log, err, "")
		return
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, records); err != nil {
		manga.RespondError(c, h.Log, err, "")
		return
	}

	name := fmt.Sprintf("manga-collection-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxMime, buf.Bytes())
}
