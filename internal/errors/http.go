package errors

import (
	"errors"
)

const genericMessage = "an unexpected error occurred"

// Response is the JSON error body returned by the HTTP layer.
type Response struct {
	Error string `json:"error"`
	Code  Code   `json:"code"`
}

// HandleError converts any error to an HTTP status and response body.
// Messages of store failures and non-domain errors are never exposed.
func HandleError(err error) (int, Response) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return CodeUnknown.HTTPStatus(), Response{Error: genericMessage, Code: CodeUnknown}
	}

	message := appErr.Message
	if !appErr.Code.Public() {
		message = genericMessage
	}
	return appErr.Code.HTTPStatus(), Response{Error: message, Code: appErr.Code}
}
