package rest

import (
	"encoding/json"
	"errors"
)

var (
	ErrRequestFailed   = errors.New("rest: request failed")
	ErrCreateRequest   = errors.New("rest: failed to create request")
	ErrEncodeBody      = errors.New("rest: failed to encode request body")
	ErrInvalidResponse = errors.New("rest: invalid response")
	ErrServerError     = errors.New("rest: server error")
)

const InvalidResponseMessage = "Received invalid response from the server."

// ErrorKind tells a body that could not be used apart from a failure reported
// by the server.
type ErrorKind int

const (
	KindInvalidResponse ErrorKind = iota + 1
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidResponse:
		return "invalid_response"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// ClientError is the failure returned by every entry point once a response
// arrived. It is a plain value; copies never share state. ServerErrorID and
// StatusCode are zero when the server did not provide them.
type ClientError struct {
	Kind          ErrorKind
	Message       string
	URL           string
	ServerErrorID string
	StatusCode    int
}

func (e ClientError) Error() string {
	if e.URL == "" {
		return e.Message
	}

	return e.Message + ": " + e.URL
}

func (e ClientError) Is(target error) bool {
	return errors.Is(e.Unwrap(), target)
}

func (e ClientError) Unwrap() error {
	if e.Kind == KindServer {
		return ErrServerError
	}

	return ErrInvalidResponse
}

func AsClientError(err error) (ClientError, bool) {
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr, true
	}

	return ClientError{}, false //nolint:exhaustruct
}

func newInvalidResponseError(url string) ClientError {
	return ClientError{
		Kind:          KindInvalidResponse,
		Message:       InvalidResponseMessage,
		URL:           url,
		ServerErrorID: "",
		StatusCode:    0,
	}
}

// newServerError reads msg, id and status_code from a failure body. Fields
// that are missing or of an unexpected type are left empty.
func newServerError(url string, body []byte) ClientError {
	clientErr := ClientError{
		Kind:          KindServer,
		Message:       "",
		URL:           url,
		ServerErrorID: "",
		StatusCode:    0,
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return clientErr
	}

	if raw, ok := fields["msg"]; ok {
		_ = json.Unmarshal(raw, &clientErr.Message)
	}

	if raw, ok := fields["id"]; ok {
		_ = json.Unmarshal(raw, &clientErr.ServerErrorID)
	}

	if raw, ok := fields["status_code"]; ok {
		_ = json.Unmarshal(raw, &clientErr.StatusCode)
	}

	return clientErr
}
