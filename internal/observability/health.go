package observability

import (
	"context"
	"net/http"
)

func HealthLiveHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Pinger is satisfied by *sql.DB and by the Redis client wrapper.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthReadyHandler reports 503 when any dependency fails its ping. Nil pingers are skipped.
func HealthReadyHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, p := range deps {
			if p == nil {
				continue
			}
			if err := p.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(name + " unreachable"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
