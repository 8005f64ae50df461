// Пакет auth — пароли (bcrypt) и сессионные токены (JWT HS256).
package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Минимальная длина пароля.
const MinPasswordLength = 8

// ErrWeakPassword — пароль не проходит минимальные требования.
var ErrWeakPassword = errors.New("пароль слишком короткий")

// HashPassword возвращает bcrypt-хэш пароля.
// Пароль короче MinPasswordLength отклоняется.
func HashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хэширования пароля: %w", err)
	}
	return string(hash), nil
}

// CheckPassword сверяет пароль с bcrypt-хэшем.
// Возвращает true при совпадении.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
