package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 12 to keep offline brute force expensive.
const passwordHashCost = 12

const MinPasswordLength = 6

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
