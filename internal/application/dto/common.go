package dto

// ErrorResponse cuerpo de error HTTP. El mensaje es siempre un resumen apto
// para el usuario; el detalle de diagnóstico va al log, no a la respuesta.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
