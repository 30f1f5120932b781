package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfari/boardwalk/internal/constants"
	"surfari/boardwalk/internal/middleware"
	"surfari/boardwalk/internal/models/entities"
	"surfari/boardwalk/internal/services"
)

type stubLiveStore struct {
	upserts int
}

func (s *stubLiveStore) Upsert(context.Context, int64, string, int64, time.Time) error {
	s.upserts++
	return nil
}

func (s *stubLiveStore) Touch(context.Context, int64, string, time.Time) error { return nil }

func (s *stubLiveStore) Get(context.Context, int64, string) (*entities.LiveSession, error) {
	return nil, nil
}

func (s *stubLiveStore) Delete(context.Context, int64, string) error { return nil }

func (s *stubLiveStore) ListStale(context.Context, time.Time) ([]entities.LiveSession, error) {
	return nil, nil
}

type stubArchive struct{}

func (stubArchive) Insert(context.Context, *entities.ArchivedSession) error { return nil }

func newIngestRouter(live *stubLiveStore) http.Handler {
	ledger := services.NewLedgerService(live, stubArchive{}, nil, nil)
	r := chi.NewRouter()
	r.Route("/ingest/session", func(r chi.Router) {
		r.Use(middleware.GameKeyMiddleware("sekrit"))
		r.Post("/start", SessionStartHandler(ledger))
		r.Post("/end", SessionEndHandler(ledger))
	})
	return r
}

func TestIngestRejectsMissingGameKey(t *testing.T) {
	live := &stubLiveStore{}
	router := newIngestRouter(live)

	req := httptest.NewRequest(http.MethodPost, "/ingest/session/start",
		strings.NewReader(`{"userId":1,"serverId":"srv","placeId":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, live.upserts)
}

func TestIngestRejectsWrongGameKey(t *testing.T) {
	router := newIngestRouter(&stubLiveStore{})

	req := httptest.NewRequest(http.MethodPost, "/ingest/session/start",
		strings.NewReader(`{"userId":1,"serverId":"srv","placeId":2}`))
	req.Header.Set(constants.HeaderGameKey, "wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIngestStartAcknowledges(t *testing.T) {
	live := &stubLiveStore{}
	router := newIngestRouter(live)

	req := httptest.NewRequest(http.MethodPost, "/ingest/session/start",
		strings.NewReader(`{"userId":1,"serverId":"srv","placeId":2}`))
	req.Header.Set(constants.HeaderGameKey, "sekrit")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, live.upserts)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			OK bool `json:"ok"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.True(t, body.Data.OK)
}

func TestIngestValidatesPayload(t *testing.T) {
	router := newIngestRouter(&stubLiveStore{})

	for _, payload := range []string{
		`{}`,
		`{"userId":0,"serverId":"srv","placeId":2}`,
		`{"userId":1,"placeId":2}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/ingest/session/start", strings.NewReader(payload))
		req.Header.Set(constants.HeaderGameKey, "sekrit")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload %q", payload)
	}
}

func TestIngestDoubleEndAnswersOK(t *testing.T) {
	router := newIngestRouter(&stubLiveStore{})

	req := httptest.NewRequest(http.MethodPost, "/ingest/session/end",
		strings.NewReader(`{"userId":1,"serverId":"srv"}`))
	req.Header.Set(constants.HeaderGameKey, "sekrit")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			OK       bool `json:"ok"`
			Archived bool `json:"archived"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.OK)
	assert.False(t, body.Data.Archived)
}
