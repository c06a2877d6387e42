// Package uuidgen genera identificadores con forma de UUID v4 sin depender de
// una fuente criptográfica, para seguir disponible en entornos restringidos.
// La probabilidad de colisión se acepta como suficiente: estos ids nunca se
// usan como secretos de control de acceso (toda consulta remota filtra además
// por dueño).
package uuidgen

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

const template = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"

// New produce un token de 36 caracteres con forma de UUID v4: grupos hex
// 8-4-4-4-12, nibble de versión fijo en 4 y nibble de variante en 8/9/a/b.
// Mezcla el reloj de pared con math/rand, nunca crypto/rand.
func New() string {
	return newAt(nowMillis(), rand.Float64)
}

// newAt separa la fuente de tiempo y azar para poder probar el algoritmo.
func newAt(millis int64, random func() float64) string {
	var b strings.Builder
	b.Grow(len(template))
	dt := millis
	for _, c := range template {
		switch c {
		case 'x', 'y':
			r := int64(float64(dt)+random()*16) % 16
			dt /= 16
			if c == 'y' {
				r = r&0x3 | 0x8
			}
			b.WriteByte(hexDigit(byte(r)))
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// IsValid informa si s tiene la forma canónica de un UUID v4 en minúsculas.
func IsValid(s string) bool {
	if len(s) != 36 || s != strings.ToLower(s) {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + n - 10
}
