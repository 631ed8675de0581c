package pkg

// Response represents a standard API response envelope.
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// NewResponse creates a new Response with the given code, data, and message.
func NewResponse(code int, data interface{}, message string) Response {
	return Response{
		Code:    code,
		Data:    data,
		Message: message,
	}
}

// ErrorBody is the JSON error shape returned by every handler.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewError builds an ErrorBody.
func NewError(code, message string) ErrorBody {
	return ErrorBody{Error: ErrorDetail{Code: code, Message: message}}
}
