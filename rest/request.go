package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

type CredentialsMode string

const (
	CredentialsOmit       CredentialsMode = "omit"
	CredentialsSameOrigin CredentialsMode = "same-origin"
	CredentialsInclude    CredentialsMode = "include"
)

// RequestOptions describes a single call. Body may be nil, a string, a []byte,
// an io.Reader, a *FormData, url.Values, or any value that encodes to JSON.
type RequestOptions struct {
	Method      string
	Body        any
	Headers     map[string]string
	Credentials CredentialsMode
}

// Header looks up name case-insensitively.
func (o RequestOptions) Header(name string) (string, bool) {
	return lookupHeader(o.Headers, name)
}

// BuildOptions returns a copy of opts carrying the standard headers. Headers
// supplied in opts win over every computed value; opts itself is left untouched.
func (c *Client) BuildOptions(opts RequestOptions) RequestOptions {
	built := opts

	headers := map[string]string{
		HeaderRequestedWith: RequestedWith,
	}

	if token := c.Token(); token != "" {
		headers[HeaderAuthorization] = BearerScheme + " " + token
	}

	csrf := c.csrfToken()
	if opts.Method != "" && !strings.EqualFold(opts.Method, http.MethodGet) && csrf != "" {
		headers[HeaderCSRFToken] = csrf
	}

	built.Credentials = CredentialsInclude

	if _, ok := lookupHeader(headers, HeaderContentType); !ok && hasBody(opts.Body) {
		// Form bodies get their content type at dispatch.
		if !isFormBody(opts.Body) {
			headers[HeaderContentType] = ContentTypeJSON
		}
	}

	for key, value := range opts.Headers {
		setHeader(headers, key, value)
	}

	built.Headers = headers

	return built
}

func (c *Client) newRequest(ctx context.Context, rawURL string, opts RequestOptions) (*http.Request, error) {
	bodyReader, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeBody, err)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, rawURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateRequest, err)
	}

	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	if contentType != "" && req.Header.Get(HeaderContentType) == "" {
		req.Header.Set(HeaderContentType, contentType)
	}

	if c.requestID && req.Header.Get(HeaderXRequestID) == "" {
		req.Header.Set(HeaderXRequestID, uuid.New().String())
	}

	return req, nil
}

func isFormBody(body any) bool {
	switch body.(type) {
	case *FormData, url.Values:
		return true
	default:
		return false
	}
}

func hasBody(body any) bool {
	switch b := body.(type) {
	case nil:
		return false
	case string:
		return b != ""
	case []byte:
		return len(b) > 0
	case *FormData:
		return b != nil
	case url.Values:
		return b != nil
	default:
		return true
	}
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *FormData:
		if b == nil {
			return nil, "", nil
		}

		return b.encode()
	case url.Values:
		if b == nil {
			return nil, "", nil
		}

		return strings.NewReader(b.Encode()), ContentTypeFormURLEncoded, nil
	case string:
		return strings.NewReader(b), "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}

		return bytes.NewReader(data), "", nil
	}
}

func lookupHeader(headers map[string]string, name string) (string, bool) {
	if value, ok := headers[name]; ok {
		return value, true
	}

	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}

	return "", false
}

func setHeader(headers map[string]string, name, value string) {
	for key := range headers {
		if key != name && strings.EqualFold(key, name) {
			delete(headers, key)
		}
	}

	headers[name] = value
}

type formPart struct {
	name     string
	value    string
	filename string
	content  io.Reader
}

// FormData is a multipart/form-data payload. Its Content-Type, boundary
// included, is generated when the request is dispatched.
type FormData struct {
	parts []formPart
}

func NewFormData() *FormData {
	return &FormData{parts: nil}
}

func (f *FormData) Append(name, value string) *FormData {
	f.parts = append(f.parts, formPart{name: name, value: value, filename: "", content: nil})

	return f
}

func (f *FormData) AppendFile(name, filename string, content io.Reader) *FormData {
	f.parts = append(f.parts, formPart{name: name, value: "", filename: filename, content: content})

	return f
}

func (f *FormData) encode() (io.Reader, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for _, part := range f.parts {
		if part.content == nil {
			if err := writer.WriteField(part.name, part.value); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %q: %w", part.name, err)
			}

			continue
		}

		fileWriter, err := writer.CreateFormFile(part.name, part.filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %q: %w", part.name, err)
		}

		if _, err := io.Copy(fileWriter, part.content); err != nil {
			return nil, "", fmt.Errorf("failed to write form file %q: %w", part.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}
