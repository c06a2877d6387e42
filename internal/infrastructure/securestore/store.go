// Package securestore implementa el almacén clave/valor cifrado del dispositivo.
// Cada valor se cifra con AES-GCM (nonce aleatorio de 12 bytes por escritura) y
// el conjunto se serializa como JSON en un único archivo. Es el espejo no
// autoritativo del dueño actual: perderlo o corromperlo nunca es fatal.
package securestore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/patmos-mobile/sync-api/internal/domain"
)

type storedValue struct {
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

// Store es un KV cifrado respaldado por archivo. Las operaciones son síncronas;
// el dispositivo es en la práctica mono-escritor (ver modelo de concurrencia).
type Store struct {
	mu   sync.Mutex
	path string
	gcm  cipher.AEAD
}

// New abre (o prepara) el almacén en path con la clave AES dada
// (16, 24 o 32 bytes). El archivo se crea en la primera escritura.
func New(path string, key []byte) (*Store, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("clave de caché inválida: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("inicializar GCM: %w", err)
	}
	return &Store{path: path, gcm: gcm}, nil
}

// Get devuelve el valor de key. ok=false cuando la clave no existe.
// Un archivo o entrada indescifrable devuelve domain.ErrLocalCorrupt.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	sv, ok := entries[key]
	if !ok {
		return "", false, nil
	}
	plain, err := s.gcm.Open(nil, sv.Nonce, sv.Data, nil)
	if err != nil {
		return "", false, fmt.Errorf("%w: descifrar %q: %v", domain.ErrLocalCorrupt, key, err)
	}
	return string(plain), true, nil
}

// Set guarda value bajo key, sobrescribiendo el valor anterior.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		// Caché corrupta: se reinicia en vez de propagar (espejo no autoritativo).
		entries = map[string]storedValue{}
	}
	nonce := make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generar nonce: %w", err)
	}
	entries[key] = storedValue{Nonce: nonce, Data: s.gcm.Seal(nil, nonce, []byte(value), nil)}
	return s.save(entries)
}

// Delete elimina key del almacén. Borrar una clave ausente no es error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		entries = map[string]storedValue{}
	}
	delete(entries, key)
	return s.save(entries)
}

func (s *Store) load() (map[string]storedValue, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]storedValue{}, nil
		}
		return nil, fmt.Errorf("leer caché: %w", err)
	}
	entries := map[string]storedValue{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLocalCorrupt, err)
	}
	return entries, nil
}

func (s *Store) save(entries map[string]storedValue) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("serializar caché: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("escribir caché: %w", err)
	}
	return nil
}
