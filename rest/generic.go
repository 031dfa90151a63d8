//nolint:ireturn
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Execute sends opts to rawURL as given, without adding any standard headers.
//
// A body that cannot be read or decoded into T yields a ClientError of kind
// KindInvalidResponse whatever the status. A non-2xx status yields a
// ClientError of kind KindServer built from the body's msg, id and
// status_code fields. Any 2xx status is a success, even when the body looks
// like an error.
func Execute[T any](ctx context.Context, c *Client, rawURL string, opts RequestOptions) (*Response[T], error) {
	resp, body, err := c.dispatch(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}

	headers := ParseNestedHeaders(resp.Header)

	if !json.Valid(body) {
		return nil, newInvalidResponseError(rawURL)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newServerError(rawURL, body)
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, newInvalidResponseError(rawURL)
	}

	return &Response[T]{
		Data:    data,
		Headers: headers,
		Raw:     resp,
	}, nil
}

// FetchWithResponse builds opts with BuildOptions and executes them.
func FetchWithResponse[T any](ctx context.Context, c *Client, rawURL string, opts RequestOptions) (*Response[T], error) {
	return Execute[T](ctx, c, rawURL, c.BuildOptions(opts))
}

// Fetch is FetchWithResponse for callers that only need the decoded body.
func Fetch[T any](ctx context.Context, c *Client, rawURL string, opts RequestOptions) (T, error) {
	resp, err := FetchWithResponse[T](ctx, c, rawURL, opts)
	if err != nil {
		var zero T

		return zero, err
	}

	return resp.Data, nil
}

func GetJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	return Fetch[T](ctx, c, c.URL(path, query), RequestOptions{Method: http.MethodGet}) //nolint:exhaustruct
}

func PostJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return Fetch[T](ctx, c, c.URL(path, nil), RequestOptions{Method: http.MethodPost, Body: body}) //nolint:exhaustruct
}

func PutJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return Fetch[T](ctx, c, c.URL(path, nil), RequestOptions{Method: http.MethodPut, Body: body}) //nolint:exhaustruct
}

func PatchJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return Fetch[T](ctx, c, c.URL(path, nil), RequestOptions{Method: http.MethodPatch, Body: body}) //nolint:exhaustruct
}

func DeleteJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	return Fetch[T](ctx, c, c.URL(path, query), RequestOptions{Method: http.MethodDelete}) //nolint:exhaustruct
}
