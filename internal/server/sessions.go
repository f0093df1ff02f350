package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/redlens/redlens/internal/metrics"
)

// Session is stored as a JSON blob under session:* keys, expiring with the
// key's TTL.
type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	IP        string `json:"ip"`
	CreatedAt string `json:"created_at"`
	TTLSecs   uint64 `json:"ttl_secs"`
}

type createSessionRequest struct {
	UserID  string  `json:"user_id"`
	IP      string  `json:"ip"`
	TTLSecs *uint64 `json:"ttl_secs"`
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	id := chi.URLParam(r, "id")
	key := "session:" + id

	tStore := time.Now()
	raw, found, err := s.store.GetValue(r.Context(), key)
	redisUS := microsSince(tStore)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "redis: "+err.Error())
		return
	}

	if !found {
		s.collector.Record(metrics.Sample{
			Endpoint: "GET /api/sessions/{id}",
			RedisUS:  redisUS,
			TotalUS:  microsSince(t0),
			IsRead:   true,
		})
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %q not found or expired", id))
		return
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		writeError(w, http.StatusInternalServerError, "corrupt session data: "+err.Error())
		return
	}

	totalUS := microsSince(t0)
	s.collector.Record(metrics.Sample{
		Endpoint: "GET /api/sessions/{id}",
		RedisUS:  redisUS,
		AppUS:    saturatingSub(totalUS, redisUS),
		TotalUS:  totalUS,
		IsRead:   true,
		Success:  true,
	})
	writeTimed(w, session, totalUS, redisUS)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.IP == "" {
		req.IP = "127.0.0.1"
	}
	ttl := uint64(300)
	if req.TTLSecs != nil {
		ttl = *req.TTLSecs
	}

	session := Session{
		ID:        newEntityID("sess"),
		UserID:    req.UserID,
		Token:     "tok_" + strings.ToLower(ulid.Make().String()),
		IP:        req.IP,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		TTLSecs:   ttl,
	}
	key := "session:" + session.ID

	blob, err := json.Marshal(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tStore := time.Now()
	err = s.store.SetValue(r.Context(), key, string(blob), time.Duration(ttl)*time.Second)
	redisUS := microsSince(tStore)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "redis: "+err.Error())
		return
	}

	totalUS := microsSince(t0)
	s.collector.Record(metrics.Sample{
		Endpoint: "POST /api/sessions",
		RedisUS:  redisUS,
		AppUS:    saturatingSub(totalUS, redisUS),
		TotalUS:  totalUS,
		Success:  true,
	})
	writeTimed(w, session, totalUS, redisUS)
}
