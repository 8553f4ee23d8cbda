package manga

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mangashelf/internal/sync"
	"mangashelf/pkg/models"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, s Store) *gin.Engine {
	t.Helper()
	r := gin.New()
	NewHandler(s, nil, zap.NewNop()).RegisterRoutes(r.Group("/manga"))
	return r
}

func call(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHandler_CreateQueryAggregate(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	_, err := Seed(context.Background(), s)
	require.NoError(t, err)
	r := newTestRouter(t, s)

	_, env := call(t, r, http.MethodGet, "/manga/stats", nil)
	before := decode[models.Stats](t, env.Data)

	w, env := call(t, r, http.MethodPost, "/manga", map[string]any{
		"title": "One Piece", "volume": "1", "genre": "Shonen, Abenteuer", "isRead": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Manga created successfully", env.Message)
	created := decode[models.Manga](t, env.Data)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, DefaultLanguage, created.Language)
	assert.Equal(t, PlaceholderCover, created.CoverImageURL)

	w, env = call(t, r, http.MethodGet, "/manga?pageSize=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.Page](t, env.Data)
	assert.Contains(t, ids(page.Items), created.ID)

	_, env = call(t, r, http.MethodGet, "/manga/stats", nil)
	after := decode[models.Stats](t, env.Data)
	assert.Equal(t, before.Total+1, after.Total)
	assert.Equal(t, before.Read+1, after.Read)
	assert.Equal(t, before.ByGenre["Shonen"]+1, after.ByGenre["Shonen"])
	assert.Equal(t, before.ByGenre["Abenteuer"]+1, after.ByGenre["Abenteuer"])
}

func TestHandler_CreateValidation(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, NewMemoryStore())

	w, env := call(t, r, http.MethodPost, "/manga", map[string]any{"volume": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", env.Error)

	w, env = call(t, r, http.MethodPost, "/manga", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", env.Error)
}

func TestHandler_GetUpdateDelete(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	m, err := s.Create(context.Background(), models.MangaInput{Title: "Akira", IsDuplicate: true})
	require.NoError(t, err)
	r := newTestRouter(t, s)

	w, env := call(t, r, http.MethodGet, "/manga/"+m.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Akira", decode[models.Manga](t, env.Data).Title)

	w, env = call(t, r, http.MethodPut, "/manga/"+m.ID, map[string]any{"isRead": false, "volume": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Manga](t, env.Data)
	assert.Equal(t, "2", updated.Volume)
	assert.True(t, updated.IsDuplicate)

	w, env = call(t, r, http.MethodPatch, "/manga/"+m.ID, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", env.Error)

	w, env = call(t, r, http.MethodDelete, "/manga/"+m.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Manga deleted successfully", env.Message)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w, env = call(t, r, method, "/manga/"+m.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Manga not found", env.Error)
	}
	w, _ = call(t, r, http.MethodPut, "/manga/"+m.ID, map[string]any{"isRead": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_BulkDelete(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	var created []string
	for _, title := range []string{"A", "B", "C"} {
		m, err := s.Create(context.Background(), models.MangaInput{Title: title})
		require.NoError(t, err)
		created = append(created, m.ID)
	}
	r := newTestRouter(t, s)

	w, env := call(t, r, http.MethodDelete, "/manga/bulk-delete", map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or empty ids array", env.Error)

	w, env = call(t, r, http.MethodPost, "/manga/bulk-delete", map[string]any{"ids": []string{created[0], created[2], "nope"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2 manga deleted successfully", env.Message)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{created[1]}, ids(all))
}

func TestHandler_ListParams(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	_, err := Seed(context.Background(), s)
	require.NoError(t, err)
	r := newTestRouter(t, s)

	w, env := call(t, r, http.MethodGet, "/manga?status=newbuy&page=2&pageSize=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.Page](t, env.Data)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, []string{"My Hero Academia"}, titles(page.Items))

	_, env = call(t, r, http.MethodGet, "/manga?sort=title&order=desc&verlag=Carlsen", nil)
	page = decode[models.Page](t, env.Data)
	assert.Equal(t, []string{"One Piece", "Naruto", "Attack on Titan"}, titles(page.Items))

	w, env = call(t, r, http.MethodGet, "/manga?sortKey=rating&sortDirection=asc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(env.Error, "Invalid sort key: rating (expected one of "))
	assert.Contains(t, env.Error, "title, updatedAt, volume")

	_, env = call(t, r, http.MethodGet, "/manga?page=99", nil)
	page = decode[models.Page](t, env.Data)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.Total)
}

func TestHandler_Facets(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	_, err := Seed(context.Background(), s)
	require.NoError(t, err)
	r := newTestRouter(t, s)

	w, env := call(t, r, http.MethodGet, "/manga/facets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f := decode[models.Facets](t, env.Data)
	assert.Equal(t, []string{"Carlsen", "Panini"}, f.Publishers)
	assert.Equal(t, []string{"1", "2", "3", "5"}, f.Volumes)
}

// failingStore fails every call with a backend error.
type failingStore struct{ Store }

var errBackend = errors.New("connection refused")

func (failingStore) Query(context.Context, Query) (models.Page, error) { return models.Page{}, errBackend }
func (failingStore) All(context.Context) ([]models.Manga, error)        { return nil, errBackend }

func TestHandler_StoreFailure(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, failingStore{})
	for _, path := range []string{"/manga", "/manga/stats", "/manga/facets"} {
		w, env := call(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.Equal(t, "Internal server error", env.Error, path)
		assert.NotContains(t, w.Body.String(), "connection refused")
	}
}

func TestHandler_PublishesInRequestOrder(t *testing.T) {
	t.Parallel()

	hub := sync.NewHub()
	r := gin.New()
	NewHandler(NewMemoryStore(), hub, zap.NewNop()).RegisterRoutes(r.Group("/manga"))

	server, client := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })
	joined := make(chan error, 1)
	go func() { joined <- hub.AddConn(server) }()

	events := make(chan sync.CollectionEvent, 16)
	go func() {
		defer close(events)
		rd := bufio.NewReader(client)
		for {
			line, err := rd.ReadBytes('\n')
			if err != nil {
				return
			}
			var ev sync.CollectionEvent
			if json.Unmarshal(line, &ev) == nil {
				events <- ev
			}
		}
	}()

	next := func() sync.CollectionEvent {
		t.Helper()
		select {
		case ev, ok := <-events:
			require.True(t, ok, "feed closed")
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("no event")
			return sync.CollectionEvent{}
		}
	}

	assert.Equal(t, sync.EventWelcome, next().Type)
	require.NoError(t, <-joined)

	w, env := call(t, r, http.MethodPost, "/manga", map[string]any{"title": "Monster"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Manga](t, env.Data).ID

	w, _ = call(t, r, http.MethodPut, "/manga/"+id, map[string]any{"volume": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = call(t, r, http.MethodDelete, "/manga/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, want := range []string{sync.EventCreated, sync.EventUpdated, sync.EventDeleted} {
		ev := next()
		assert.Equal(t, want, ev.Type)
		assert.Equal(t, []string{id}, ev.IDs)
	}
}
