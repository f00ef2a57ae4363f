package middleware

import (
	"crypto/subtle"
	"net/http"

	"leverage/pkg/crypto"
)

// AuthConfig - параметры аутентификации API.
//
// Ключ задается либо в открытом виде (Key, для dev окружений), либо
// bcrypt-хешем (KeyHash, для production). При заданных обоих проверка
// идет по хешу.
type AuthConfig struct {
	Required bool
	Key      string
	KeyHash  string
}

// APIKeyAuth - middleware аутентификации по API ключу.
//
// Ключ принимается из заголовка X-API-Key или query параметра api_key.
// При Required=false цепочка проходит без проверки.
//
// Сравнение открытого ключа выполняется за константное время
// (защита от timing attacks); bcrypt константновременной по построению.
func APIKeyAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Required {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}

			if key == "" || !cfg.verify(key) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid or missing API key"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// verify проверяет предъявленный ключ против конфигурации
func (cfg AuthConfig) verify(key string) bool {
	if cfg.KeyHash != "" {
		return crypto.VerifyAPIKey(key, cfg.KeyHash)
	}
	if cfg.Key != "" {
		return subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Key)) == 1
	}
	return false
}
