package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/redlens/redlens/internal/metrics"
)

// Product mirrors the hash layout under product:* keys. Price is in cents.
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Price       uint64 `json:"price"`
	Stock       uint32 `json:"stock"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	id := chi.URLParam(r, "id")
	key := "product:" + id

	tStore := time.Now()
	fields, err := s.store.GetFields(r.Context(), key)
	redisUS := microsSince(tStore)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "redis: "+err.Error())
		return
	}

	if len(fields) == 0 {
		s.collector.Record(metrics.Sample{
			Endpoint: "GET /api/products/{id}",
			RedisUS:  redisUS,
			TotalUS:  microsSince(t0),
			IsRead:   true,
		})
		writeError(w, http.StatusNotFound, fmt.Sprintf("product %q not found", id))
		return
	}

	product := productFromFields(fields)

	totalUS := microsSince(t0)
	s.collector.Record(metrics.Sample{
		Endpoint: "GET /api/products/{id}",
		RedisUS:  redisUS,
		AppUS:    saturatingSub(totalUS, redisUS),
		TotalUS:  totalUS,
		IsRead:   true,
		Success:  true,
	})
	writeTimed(w, product, totalUS, redisUS)
}

func productFromFields(fields map[string]string) Product {
	price, _ := strconv.ParseUint(fields["price"], 10, 64)
	stock, _ := strconv.ParseUint(fields["stock"], 10, 32)
	return Product{
		ID:          fields["id"],
		Title:       fields["title"],
		Price:       price,
		Stock:       uint32(stock),
		Category:    fields["category"],
		Description: fields["description"],
	}
}
