package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StatusPayload is the body for delete/health style endpoints that have no
// document to return.
type StatusPayload struct {
	Status string `json:"status"`
}
