package middleware

import (
	"net/http"
)

// MaxBodyBytes - middleware ограничения размера тела запроса.
//
// Запросы с заявленным Content-Length больше лимита отклоняются сразу
// с 413; для остальных тело оборачивается в http.MaxBytesReader, чтобы
// лимит соблюдался и при chunked encoding.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":"request body too large"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
