package rest

import (
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	requestsPerSecond = 10
	burstSize         = 20
)

type limitMessage struct {
	Status string `json:"status"`
	Body   string `json:"body"`
}

// RateLimit - caps the request rate across the whole API surface.
func RateLimit(next http.Handler) http.Handler {
	limiter := rate.NewLimiter(requestsPerSecond, burstSize)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			message := limitMessage{
				Status: "Request Denied",
				Body:   "The API is at capacity, try again later",
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(message)
			return
		}

		next.ServeHTTP(w, r)
	})
}
