package scanner

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mangashelf/internal/manga"
	"mangashelf/internal/metadata"
)

type Handler struct {
	Decoder  Decoder
	Resolver *metadata.Resolver // optional, used with ?resolve=true
	Log      *zap.Logger
}

func NewHandler(d Decoder, r *metadata.Resolver, log *zap.Logger) *Handler {
	return &Handler{Decoder: d, Resolver: r, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scan", h.scan)
}

type scanReq struct {
	ISBN string `json:"isbn" form:"isbn"`
}

// scan accepts an uploaded image or, as manual fallback, a typed ISBN.
func (h *Handler) scan(c *gin.Context) {
	raw, err := h.readCode(c)
	if err != nil {
		if errors.Is(err, ErrNoBarcode) {
			manga.Fail(c, http.StatusBadRequest, "No barcode found. Please enter the ISBN manually.")
			return
		}
		manga.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	isbn, ok := CleanISBN(raw)
	if !ok {
		manga.Fail(c, http.StatusBadRequest, "Invalid ISBN format")
		return
	}

	data := gin.H{"isbn": isbn}
	if h.Resolver != nil && c.Query("resolve") == "true" {
		md, err := h.Resolver.Resolve(c.Request.Context(), isbn)
		if err != nil && !errors.Is(err, manga.ErrNotFound) {
			h.Log.Warn("scan resolve failed", zap.String("isbn", isbn), zap.Error(err))
		}
		// a failed lookup still returns the scanned isbn for manual entry
		data["metadata"] = md
	}
	manga.OK(c, http.StatusOK, data, "ISBN scanned successfully")
}

func (h *Handler) readCode(c *gin.Context) (string, error) {
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return "", errors.New("Unable to read the image")
		}
		defer f.Close()

		code, err := DecodeReader(h.Decoder, f)
		if err != nil {
			h.Log.Debug("barcode decode failed", zap.String("file", fh.Filename), zap.Error(err))
			if errors.Is(err, ErrNoBarcode) {
				return "", ErrNoBarcode
			}
			return "", errors.New("Unable to read the image")
		}
		return code, nil
	}

	var req scanReq
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.ISBN) == "" {
		return "", errors.New("ISBN is required")
	}
	return req.ISBN, nil
}
