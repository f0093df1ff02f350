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

// User mirrors the hash layout under user:* keys.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Prefs     string `json:"prefs"`
	CreatedAt string `json:"created_at"`
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Prefs string `json:"prefs"`
}

const defaultPrefs = `{"theme":"light","lang":"en","notifications":true}`

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	id := chi.URLParam(r, "id")
	key := "user:" + id

	tStore := time.Now()
	fields, err := s.store.GetFields(r.Context(), key)
	redisUS := microsSince(tStore)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "redis: "+err.Error())
		return
	}

	if len(fields) == 0 {
		s.collector.Record(metrics.Sample{
			Endpoint: "GET /api/users/{id}",
			RedisUS:  redisUS,
			TotalUS:  microsSince(t0),
			IsRead:   true,
		})
		writeError(w, http.StatusNotFound, fmt.Sprintf("user %q not found", id))
		return
	}

	user := userFromFields(fields)

	totalUS := microsSince(t0)
	s.collector.Record(metrics.Sample{
		Endpoint: "GET /api/users/{id}",
		RedisUS:  redisUS,
		AppUS:    saturatingSub(totalUS, redisUS),
		TotalUS:  totalUS,
		IsRead:   true,
		Success:  true,
	})
	writeTimed(w, user, totalUS, redisUS)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Role == "" {
		req.Role = "viewer"
	}
	if req.Prefs == "" {
		req.Prefs = defaultPrefs
	}

	user := User{
		ID:        newEntityID("usr"),
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		Prefs:     req.Prefs,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	key := "user:" + user.ID

	tStore := time.Now()
	err := s.store.SetFields(r.Context(), key, map[string]string{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"role":       user.Role,
		"prefs":      user.Prefs,
		"created_at": user.CreatedAt,
	})
	redisUS := microsSince(tStore)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "redis: "+err.Error())
		return
	}

	totalUS := microsSince(t0)
	s.collector.Record(metrics.Sample{
		Endpoint: "POST /api/users",
		RedisUS:  redisUS,
		AppUS:    saturatingSub(totalUS, redisUS),
		TotalUS:  totalUS,
		Success:  true,
	})
	writeTimed(w, user, totalUS, redisUS)
}

func userFromFields(fields map[string]string) User {
	return User{
		ID:        fields["id"],
		Name:      fields["name"],
		Email:     fields["email"],
		Role:      fields["role"],
		Prefs:     fields["prefs"],
		CreatedAt: fields["created_at"],
	}
}

// newEntityID derives a short lowercase ID from a ULID. The suffix carries
// the random bits, so IDs minted in the same millisecond stay distinct.
func newEntityID(prefix string) string {
	id := ulid.Make().String()
	return prefix + "_" + strings.ToLower(id[len(id)-8:])
}
