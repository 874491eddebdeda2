package generate

import "net/http"

// Kind classifies a pipeline failure for status mapping and metrics.
type Kind string

const (
	KindValidation Kind = "validation"
	KindRender     Kind = "render"
	KindDelivery   Kind = "delivery"
	KindUnexpected Kind = "unexpected"
)

// Failure is a typed pipeline error. Message is safe to echo to callers;
// Err carries the internal cause and stays server-side.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// HTTPStatus maps the failure kind to a response status code.
func (f *Failure) HTTPStatus() int {
	if f.Kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func validationFailure(message string) *Failure {
	return &Failure{Kind: KindValidation, Message: message}
}

func renderFailure(err error) *Failure {
	return &Failure{Kind: KindRender, Message: "Failed to generate certificate", Err: err}
}

func deliveryFailure(err error) *Failure {
	return &Failure{Kind: KindDelivery, Message: "Failed to send email", Err: err}
}

// AsFailure coerces any error into a Failure, wrapping unknown errors as
// unexpected so internal detail never leaks into a response body.
func AsFailure(err error) *Failure {
	if f, ok := err.(*Failure); ok {
		return f
	}
	return &Failure{Kind: KindUnexpected, Message: "An unexpected error occurred", Err: err}
}
