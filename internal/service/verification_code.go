package service

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
	"time"
)

const (
	defaultCodeTTL = 10 * time.Minute
	codeMin        = 100000
	codeMax        = 999999
)

// generateVerificationCode devuelve un código decimal de 6 dígitos uniforme en [100000, 999999].
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

func codesMatch(provided, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(stored)) == 1
}
