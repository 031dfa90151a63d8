package rest

import "net/http"

// Response is a successful call: the decoded body, the reconstructed headers
// and the transport response. Raw.Body can be read again.
type Response[T any] struct {
	Data    T
	Headers Headers
	Raw     *http.Response
}
