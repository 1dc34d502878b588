package dto

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details contexto adicional (ej. stock disponible en INSUFFICIENT_STOCK).
	Details map[string]any `json:"details,omitempty"`
}

// ListMeta metadatos de paginación.
type ListMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}
