// Package secret genera credenciales temporales.
package secret

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// alphabet omite caracteres ambiguos (0/O, 1/l/I) para dictar la clave sin errores.
const alphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// TemporaryPasswordLength longitud de las claves temporales.
const TemporaryPasswordLength = 16

// TemporaryPassword devuelve una clave aleatoria de n caracteres usando crypto/rand.
func TemporaryPassword(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("secret: longitud inválida %d", n)
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("secret: leer aleatorio: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
