// Package crypto содержит хеширование секретов сервиса.
package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost - стоимость bcrypt для хеширования API ключей.
// 12 раундов достаточно: проверка выполняется один раз на запрос.
const DefaultCost = 12

// HashAPIKey хеширует API ключ для хранения в конфигурации.
// Используется утилитой генерации ключей при развертывании.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey проверяет API ключ против bcrypt-хеша.
// Возвращает true при совпадении.
func VerifyAPIKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
