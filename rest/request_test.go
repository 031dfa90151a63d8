package rest_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/oseducation/kgrest/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://kg.example.com"

func staticSource(token string) rest.CredentialSource {
	return rest.CredentialSourceFunc(func() string { return token })
}

func TestBuildOptions_AlwaysSetsRequestedWithAndIncludesCredentials(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL)

	opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodGet}) //nolint:exhaustruct

	value, ok := opts.Header(rest.HeaderRequestedWith)
	require.True(t, ok)
	require.Equal(t, "XMLHttpRequest", value)
	require.Equal(t, rest.CredentialsInclude, opts.Credentials)
}

func TestBuildOptions_OverridesCallerCredentialsMode(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL)

	opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodGet, Credentials: rest.CredentialsOmit}) //nolint:exhaustruct

	require.Equal(t, rest.CredentialsInclude, opts.Credentials)
}

func TestBuildOptions_SetsBearerAuthorizationWhenTokenPresent(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL, rest.WithToken("session-token"))

	opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodGet}) //nolint:exhaustruct

	value, ok := opts.Header(rest.HeaderAuthorization)
	require.True(t, ok)
	require.Equal(t, "BEARER session-token", value)
}

func TestBuildOptions_OmitsAuthorizationWithoutToken(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL)

	opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodGet}) //nolint:exhaustruct

	_, ok := opts.Header(rest.HeaderAuthorization)
	require.False(t, ok)
}

func TestBuildOptions_SetsJSONContentTypeForNonFormBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
	}{
		{name: "string", body: `{"name":"graph"}`},
		{name: "bytes", body: []byte(`{"name":"graph"}`)},
		{name: "reader", body: strings.NewReader("payload")},
		{name: "map", body: map[string]string{"name": "graph"}},
		{name: "struct", body: struct{ Name string }{Name: "graph"}},
	}

	client := rest.New(testBaseURL)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodPost, Body: tt.body}) //nolint:exhaustruct

			value, ok := opts.Header(rest.HeaderContentType)
			require.True(t, ok)
			require.Equal(t, "application/json", value)
		})
	}
}

func TestBuildOptions_LeavesContentTypeUnsetForFormData(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL)
	form := rest.NewFormData().Append("name", "graph")

	opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodPost, Body: form}) //nolint:exhaustruct

	_, ok := opts.Header(rest.HeaderContentType)
	require.False(t, ok)
}

func TestBuildOptions_LeavesContentTypeUnsetForURLValues(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL)

	opts := client.BuildOptions(rest.RequestOptions{ //nolint:exhaustruct
		Method: http.MethodPost,
		Body:   url.Values{"name": {"graph"}},
	})

	_, ok := opts.Header(rest.HeaderContentType)
	require.False(t, ok)
}

func TestBuildOptions_LeavesContentTypeUnsetWithoutBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
	}{
		{name: "nil", body: nil},
		{name: "empty string", body: ""},
		{name: "empty bytes", body: []byte{}},
	}

	client := rest.New(testBaseURL)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodPost, Body: tt.body}) //nolint:exhaustruct

			_, ok := opts.Header(rest.HeaderContentType)
			require.False(t, ok)
		})
	}
}

func TestBuildOptions_NeverSendsCSRFOnGet(t *testing.T) {
	t.Parallel()

	clients := map[string]*rest.Client{
		"configured": rest.New(testBaseURL, rest.WithCSRF("csrf-token")),
		"source":     rest.New(testBaseURL, rest.WithCredentialSource(staticSource("cookie-token"))),
	}

	for name, client := range clients {
		for _, method := range []string{"GET", "get", "Get"} {
			t.Run(name+"/"+method, func(t *testing.T) {
				t.Parallel()

				opts := client.BuildOptions(rest.RequestOptions{Method: method}) //nolint:exhaustruct

				_, ok := opts.Header(rest.HeaderCSRFToken)
				require.False(t, ok)
			})
		}
	}
}

func TestBuildOptions_SendsCSRFOnNonGet(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL, rest.WithCSRF("csrf-token"))

	for _, method := range []string{"POST", "put", "Delete", "PATCH"} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()

			opts := client.BuildOptions(rest.RequestOptions{Method: method}) //nolint:exhaustruct

			value, ok := opts.Header(rest.HeaderCSRFToken)
			require.True(t, ok)
			require.Equal(t, "csrf-token", value)
		})
	}
}

func TestBuildOptions_OmitsCSRFWhenMethodMissing(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL, rest.WithCSRF("csrf-token"))

	opts := client.BuildOptions(rest.RequestOptions{}) //nolint:exhaustruct

	_, ok := opts.Header(rest.HeaderCSRFToken)
	require.False(t, ok)
}

func TestBuildOptions_OmitsCSRFWhenTokenEmpty(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL, rest.WithCredentialSource(staticSource("")))

	opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodPost}) //nolint:exhaustruct

	_, ok := opts.Header(rest.HeaderCSRFToken)
	require.False(t, ok)
}

func TestBuildOptions_PrefersConfiguredCSRFOverSource(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL,
		rest.WithCSRF("configured"),
		rest.WithCredentialSource(staticSource("from-cookie")),
	)

	opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodPost}) //nolint:exhaustruct

	value, _ := opts.Header(rest.HeaderCSRFToken)
	require.Equal(t, "configured", value)
}

func TestBuildOptions_FallsBackToCredentialSource(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL, rest.WithCredentialSource(rest.CookieHeaderSource("theme=dark; KGCSRF=from-cookie")))

	opts := client.BuildOptions(rest.RequestOptions{Method: http.MethodPut}) //nolint:exhaustruct

	value, _ := opts.Header(rest.HeaderCSRFToken)
	require.Equal(t, "from-cookie", value)
}

func TestBuildOptions_CallerHeadersWinOverDefaults(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL, rest.WithToken("session-token"))

	opts := client.BuildOptions(rest.RequestOptions{ //nolint:exhaustruct
		Method: http.MethodPost,
		Body:   map[string]string{"name": "graph"},
		Headers: map[string]string{
			"Content-Type":  "text/plain",
			"Authorization": "Basic abc",
		},
	})

	contentType, _ := opts.Header(rest.HeaderContentType)
	auth, _ := opts.Header(rest.HeaderAuthorization)

	require.Equal(t, "text/plain", contentType)
	require.Equal(t, "Basic abc", auth)
}

func TestBuildOptions_CallerHeaderReplacesDefaultRegardlessOfCase(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL)

	opts := client.BuildOptions(rest.RequestOptions{ //nolint:exhaustruct
		Method:  http.MethodPost,
		Body:    `{"name":"graph"}`,
		Headers: map[string]string{"content-type": "text/plain"},
	})

	count := 0

	for key := range opts.Headers {
		if strings.EqualFold(key, rest.HeaderContentType) {
			count++
		}
	}

	value, _ := opts.Header(rest.HeaderContentType)

	require.Equal(t, 1, count)
	require.Equal(t, "text/plain", value)
}

func TestBuildOptions_DoesNotMutateCallerOptions(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL, rest.WithToken("session-token"), rest.WithCSRF("csrf-token"))

	callerHeaders := map[string]string{"X-Custom": "value"}
	callerOpts := rest.RequestOptions{ //nolint:exhaustruct
		Method:  http.MethodPost,
		Body:    `{}`,
		Headers: callerHeaders,
	}

	built := client.BuildOptions(callerOpts)

	assert.Equal(t, map[string]string{"X-Custom": "value"}, callerHeaders)
	assert.Empty(t, callerOpts.Credentials)
	assert.Equal(t, "value", built.Headers["X-Custom"])
	assert.Len(t, built.Headers, 5)
}

func TestBuildOptions_CapturesTokenAtBuildTime(t *testing.T) {
	t.Parallel()

	client := rest.New(testBaseURL, rest.WithToken("first"))

	built := client.BuildOptions(rest.RequestOptions{Method: http.MethodGet}) //nolint:exhaustruct

	client.SetToken("second")

	value, _ := built.Header(rest.HeaderAuthorization)
	require.Equal(t, "BEARER first", value)
	require.Equal(t, "second", client.Token())
}
