package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mangashelf/internal/manga"
	"mangashelf/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func newRouter(store manga.Store, maxUpload int64) *gin.Engine {
	r := gin.New()
	NewHandler(New(store, zap.NewNop()), nil, zap.NewNop(), maxUpload).RegisterRoutes(r.Group("/manga"))
	return r
}

func upload(t *testing.T, r http.Handler, field, filename string, content []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/manga/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHandler_Import(t *testing.T) {
	t.Parallel()

	store := manga.NewMemoryStore()
	r := newRouter(store, 0)
	data := workbook(t,
		[]any{"title", "band", "autor", "new_buy"},
		[]any{"One Piece", "1", "Eiichiro Oda", "FALSE"},
		[]any{"", "2", "Nobody", "TRUE"},
		[]any{"Naruto", "1", "Masashi Kishimoto", "TRUE"},
	)

	w, env := upload(t, r, "file", "collection.xlsx", data)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Successfully imported 2 manga", env.Message)

	var out Outcome
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 2, out.Imported)
	assert.Equal(t, []string{"Row 4: Title is required"}, out.Errors)
	assert.NotContains(t, string(env.Data), "ids")

	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[1].WantToBuy)
}

func TestHandler_ImportRejects(t *testing.T) {
	t.Parallel()

	r := newRouter(manga.NewMemoryStore(), 0)

	w, env := upload(t, r, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file provided", env.Error)

	w, env = upload(t, r, "file", "collection.csv", []byte("title\nOne Piece\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid file type. Please upload an Excel file.", env.Error)

	w, env = upload(t, r, "file", "legacy.xls", []byte("not a zip"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unable to read the spreadsheet", env.Error)
}

func TestHandler_ImportTooLarge(t *testing.T) {
	t.Parallel()

	r := newRouter(manga.NewMemoryStore(), 512)
	w, env := upload(t, r, "file", "big.xlsx", bytes.Repeat([]byte("x"), 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "File too large", env.Error)
}

func TestHandler_Export(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := manga.NewMemoryStore()
	for _, in := range []models.MangaInput{
		{Title: "Zetman", IsRead: true},
		{Title: "Akira"},
		{Title: "Berserk", IsRead: true},
	} {
		_, err := store.Create(ctx, in)
		require.NoError(t, err)
	}
	r := newRouter(store, 0)

	req := httptest.NewRequest(http.MethodGet, "/manga/export?status=read&sortKey=title&sortDirection=asc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxMime, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="manga-collection-`))

	rows, err := ReadXLSX(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Berserk", rows[0]["title"])
	assert.Equal(t, "Zetman", rows[1]["title"])
}
