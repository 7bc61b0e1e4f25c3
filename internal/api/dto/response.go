package dto

// ErrorResponse 所有非 2xx 响应的统一结构
type ErrorResponse struct {
	Error string `json:"error"`
}
