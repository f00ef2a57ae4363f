package middleware

import (
	"net/http"
	"strings"
)

// CORS - middleware для настройки Cross-Origin Resource Sharing.
//
// allowedOrigins - comma-separated список доменов; "*" или пустая строка
// разрешают любые origins.
//
// Для разрешенных origins устанавливается конкретный Origin в ответе
// (обязательно при credentials), preflight запросы (OPTIONS) отвечаются
// сразу без прохода по цепочке.
func CORS(allowedOrigins string) func(http.Handler) http.Handler {
	allowAll := allowedOrigins == "" || allowedOrigins == "*"

	allowed := make(map[string]bool)
	if !allowAll {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowed[origin] = true
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case origin == "":
				// Запросы без Origin (curl, боты) - разрешаем
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			// Для неразрешенных origins заголовки не устанавливаются -
			// браузер заблокирует ответ

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Requested-With")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
