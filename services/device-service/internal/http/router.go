package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Queue    http.HandlerFunc
	Health   http.HandlerFunc
	Sensors  http.HandlerFunc
	Readings http.HandlerFunc
	Live     http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Queue != nil {
		mux.Handle("/api/queue", method(http.MethodGet, routes.Queue))
	}
	if routes.Health != nil {
		mux.Handle("/api/health", method(http.MethodGet, routes.Health))
	}
	if routes.Sensors != nil {
		mux.Handle("/api/sensors", method(http.MethodGet, routes.Sensors))
	}
	if routes.Readings != nil {
		mux.Handle("/api/debug/readings", method(http.MethodGet, routes.Readings))
	}
	if routes.Live != nil {
		mux.Handle("/api/live", method(http.MethodGet, routes.Live))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
