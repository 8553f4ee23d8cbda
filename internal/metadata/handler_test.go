package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

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

func get(t *testing.T, r http.Handler, path string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func router(google, openlib *fakeAPI) *gin.Engine {
	r := gin.New()
	res := NewResolver(zap.NewNop(),
		NewGoogleBooks(google.URL, time.Second),
		NewOpenLibrary(openlib.URL, time.Second),
	)
	NewHandler(res, zap.NewNop()).RegisterRoutes(r.Group("/manga"))
	return r
}

func TestHandler_Lookup(t *testing.T) {
	t.Parallel()

	r := router(newFakeAPI(t, http.StatusOK, googleEmpty), newFakeAPI(t, http.StatusOK, openLibraryMatch))

	for _, path := range []string{"/manga/isbn?isbn=" + testISBN, "/manga/isbn/" + testISBN} {
		code, env := get(t, r, path)
		require.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, "Metadata retrieved successfully", env.Message)

		var md models.Metadata
		require.NoError(t, json.Unmarshal(env.Data, &md))
		assert.Equal(t, testISBN, md.ISBN)
		assert.Equal(t, "One Piece, Band 1", md.Title)
	}
}

func TestHandler_LookupErrors(t *testing.T) {
	t.Parallel()

	code, env := get(t, router(newFakeAPI(t, http.StatusOK, googleMatch), newFakeAPI(t, http.StatusOK, `{}`)), "/manga/isbn")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ISBN is required", env.Error)

	code, env = get(t, router(newFakeAPI(t, http.StatusOK, googleEmpty), newFakeAPI(t, http.StatusOK, `{}`)), "/manga/isbn/123")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No metadata found for this ISBN", env.Error)

	code, env = get(t, router(newFakeAPI(t, http.StatusServiceUnavailable, ``), newFakeAPI(t, http.StatusOK, `{}`)), "/manga/isbn/123")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Metadata provider unavailable", env.Error)
}

func TestHandler_LookupRefresh(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	require.NoError(t, cache.Save(context.Background(), &models.Metadata{ISBN: testISBN, Title: "stale"}, 0))

	google := newFakeAPI(t, http.StatusOK, googleMatch)
	res := NewResolver(zap.NewNop(), NewGoogleBooks(google.URL, time.Second)).WithCache(cache, time.Hour)
	r := gin.New()
	NewHandler(res, zap.NewNop()).RegisterRoutes(r.Group("/manga"))

	_, env := get(t, r, "/manga/isbn/"+testISBN)
	assert.Contains(t, string(env.Data), `"stale"`)

	code, env := get(t, r, "/manga/isbn/"+testISBN+"?refresh=true")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"One Piece 1"`)
	assert.Equal(t, int32(1), google.hits.Load())
}
