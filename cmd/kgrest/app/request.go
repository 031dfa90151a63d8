package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/oseducation/kgrest/rest"
	"github.com/spf13/cobra"
)

var (
	ErrInvalidPair     = errors.New("expected key=value")
	ErrConflictingBody = errors.New("--data and --form cannot be combined")
)

type RequestOptions struct {
	*GlobalOptions

	Method  string
	Path    string
	Query   []string
	Headers []string
	Data    string
	Form    []string
}

func newGetCommand(global *GlobalOptions) *cobra.Command {
	return newRequestCommand(global, http.MethodGet, "get <path>", "Send a GET request to the API", false)
}

func newPostCommand(global *GlobalOptions) *cobra.Command {
	return newRequestCommand(global, http.MethodPost, "post <path>", "Send a POST request to the API", true)
}

func newPutCommand(global *GlobalOptions) *cobra.Command {
	return newRequestCommand(global, http.MethodPut, "put <path>", "Send a PUT request to the API", true)
}

func newDeleteCommand(global *GlobalOptions) *cobra.Command {
	return newRequestCommand(global, http.MethodDelete, "delete <path>", "Send a DELETE request to the API", false)
}

func newRequestCommand(global *GlobalOptions, method, use, short string, withBody bool) *cobra.Command {
	opts := &RequestOptions{GlobalOptions: global, Method: method} //nolint:exhaustruct

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   use,
		Short: short,
		Long: short + `.

The path is resolved against the API base route, so "nodes/" targets
KG_API_URL + KG_API_VERSION + "/nodes/". The response body is printed as
indented JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]

			return runRequest(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Query, "query", "q", nil, "query parameter as key=value, repeatable")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "request header as key=value, repeatable")

	if withBody {
		cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "JSON body, or @file to read it from a file")
		cmd.Flags().StringArrayVarP(&opts.Form, "form", "F", nil,
			"multipart field as key=value, or key=@file to attach a file, repeatable")
	}

	return cmd
}

func runRequest(ctx context.Context, opts *RequestOptions) error {
	query, err := parsePairs(opts.Query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	headers, err := parsePairs(opts.Headers)
	if err != nil {
		return fmt.Errorf("invalid --header: %w", err)
	}

	body, closeBody, err := opts.body()
	if err != nil {
		return err
	}
	defer closeBody()

	requestOpts := rest.RequestOptions{ //nolint:exhaustruct
		Method: opts.Method,
		Body:   body,
	}

	if len(headers) > 0 {
		requestOpts.Headers = make(map[string]string, len(headers))
		for key := range headers {
			requestOpts.Headers[key] = headers.Get(key)
		}
	}

	resp, err := rest.FetchWithResponse[json.RawMessage](ctx, opts.client, opts.client.URL(opts.Path, query), requestOpts)
	if err != nil {
		return describeError(err)
	}

	opts.printHeaders(resp.Headers)

	return opts.printJSON(resp.Data)
}

func (o *RequestOptions) body() (any, func(), error) {
	noop := func() {}

	if o.Data != "" && len(o.Form) > 0 {
		return nil, noop, ErrConflictingBody
	}

	if o.Data != "" {
		data, err := readArgument(o.Data)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid --data: %w", err)
		}

		return data, noop, nil
	}

	if len(o.Form) == 0 {
		return nil, noop, nil
	}

	form := rest.NewFormData()

	var files []*os.File

	closeFiles := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	for _, field := range o.Form {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			closeFiles()

			return nil, noop, fmt.Errorf("invalid --form %q: %w", field, ErrInvalidPair)
		}

		path, isFile := strings.CutPrefix(value, "@")
		if !isFile {
			form.Append(key, value)

			continue
		}

		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			closeFiles()

			return nil, noop, fmt.Errorf("failed to open form file: %w", err)
		}

		files = append(files, f)
		form.AppendFile(key, filepath.Base(path), f)
	}

	return form, closeFiles, nil
}

// readArgument returns value itself, or the contents of the file it names
// when prefixed with "@".
func readArgument(value string) (string, error) {
	path, isFile := strings.CutPrefix(value, "@")
	if !isFile {
		return value, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return string(data), nil
}

func parsePairs(pairs []string) (url.Values, error) {
	values := make(url.Values, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%q: %w", pair, ErrInvalidPair)
		}

		values.Add(key, value)
	}

	return values, nil
}
