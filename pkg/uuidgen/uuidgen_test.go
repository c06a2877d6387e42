package uuidgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var canonicalV4 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// Caso 1: todo id generado tiene la forma canónica 8-4-4-4-12 con nibble de
// versión 4 y variante RFC 4122.
func TestNew_FormaCanonica(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := New()
		require.Regexp(t, canonicalV4, id, "el id debe tener forma de UUID v4 en minúsculas")
		assert.True(t, IsValid(id), "todo id generado debe pasar su propia validación")
	}
}

// Caso 2: con fuentes fijas el algoritmo es determinista. Con reloj en cero y
// azar en cero, cada nibble es cero salvo los fijados por la plantilla.
func TestNewAt_Determinista(t *testing.T) {
	zero := func() float64 { return 0 }
	got := newAt(0, zero)
	assert.Equal(t, "00000000-0000-4000-8000-000000000000", got)
}

// Caso 3: el reloj participa en los nibbles. Millis distintos con el mismo
// azar producen ids distintos.
func TestNewAt_MezclaElReloj(t *testing.T) {
	zero := func() float64 { return 0 }
	a := newAt(1_700_000_000_000, zero)
	b := newAt(1_700_000_000_001, zero)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, canonicalV4, a)
	assert.Regexp(t, canonicalV4, b)
}

// Caso 4: generación masiva sin colisiones inmediatas.
func TestNew_SinColisiones(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := New()
		_, dup := seen[id]
		require.False(t, dup, "id repetido: %s", id)
		seen[id] = struct{}{}
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"v4 canónico", "f47ac10b-58cc-4372-a567-0e02b2c3d479", true},
		{"mayúsculas", "F47AC10B-58CC-4372-A567-0E02B2C3D479", false},
		{"longitud incorrecta", "f47ac10b-58cc-4372-a567", false},
		{"versión 1", "f47ac10b-58cc-1372-a567-0e02b2c3d479", false},
		{"variante fuera de rango", "f47ac10b-58cc-4372-c567-0e02b2c3d479", false},
		{"vacío", "", false},
		{"no hex", "zzzzzzzz-zzzz-4zzz-azzz-zzzzzzzzzzzz", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValid(tc.in))
		})
	}
}
