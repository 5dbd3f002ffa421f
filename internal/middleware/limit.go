package middleware

import "net/http"

// LimitBytes — жёсткий потолок на размер тела запроса (загрузки xlsx
// бывают большими, но не бесконечными).
func LimitBytes(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
