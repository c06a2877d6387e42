// Package credentials codifica la tripleta (usuario, base de datos, password)
// en un único token apto para transporte. Es ofuscación, no cifrado: el token
// equivale a una credencial Basic y solo debe viajar por transporte seguro.
package credentials

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encode construye el texto "{username}, {databaseName}:{password}" y lo
// codifica en base64. Determinista y sin pérdidas para la tripleta.
func Encode(username, databaseName, password string) string {
	plain := fmt.Sprintf("%s, %s:%s", username, databaseName, password)
	return base64.StdEncoding.EncodeToString([]byte(plain))
}

// Decode invierte Encode y devuelve usuario y base de datos. Se usa solo para
// re-mostrar el usuario al editar; el password nunca se decodifica para mostrar.
// Un token malformado devuelve error; el llamador lo registra y deja el campo
// de usuario en blanco.
func Decode(token string) (username, databaseName string, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("token de credenciales malformado: %w", err)
	}
	plain := string(raw)
	sep := strings.Index(plain, ", ")
	if sep < 0 {
		return "", "", fmt.Errorf("token de credenciales malformado: separadores ausentes")
	}
	rest := plain[sep+2:]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", "", fmt.Errorf("token de credenciales malformado: separadores ausentes")
	}
	return plain[:sep], rest[:colon], nil
}

// AuthHeader devuelve el valor del header Authorization para Service Layer.
func AuthHeader(token string) string {
	return "Basic " + token
}
