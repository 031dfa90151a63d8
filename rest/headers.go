package rest

import (
	"maps"
	"net/http"
	"regexp"
	"slices"
	"strings"
)

var (
	nestedHeaderPattern   = regexp.MustCompile(`\n\S+:\s\S+`)
	nestedHeaderSeparator = regexp.MustCompile(`:\s`)
)

// Headers maps normalized response header names to their values.
type Headers map[string]string

// Get returns the value for key, falling back to a case-insensitive match.
func (h Headers) Get(key string) string {
	value, _ := lookupHeader(h, key)

	return value
}

// ParseNestedHeaders flattens resp headers into Headers. Some proxies fold
// several headers into one value as extra "Key: Value" lines; those lines are
// lifted out into their own entries and win over headers of the same name.
func ParseNestedHeaders(header http.Header) Headers {
	headers := make(Headers, len(header))
	nested := make(Headers)

	for _, key := range slices.Sorted(maps.Keys(header)) {
		value := strings.Join(header[key], ", ")

		if nestedHeaderPattern.MatchString(value) {
			lines := strings.Split(value, "\n")
			value = lines[0]

			for _, line := range lines[1:] {
				if line == "" {
					continue
				}

				parts := nestedHeaderSeparator.Split(line, 2) //nolint:mnd
				if len(parts) == 2 {
					nested[parts[0]] = parts[1]
				} else {
					nested[parts[0]] = ""
				}
			}
		}

		headers[CapitalizeHeaderKey(key)] = value
	}

	maps.Copy(headers, nested)

	return headers
}

// CapitalizeHeaderKey upper-cases every lowercase ASCII letter that starts a
// word, e.g. "content-type" becomes "Content-Type". Other letters keep their case.
func CapitalizeHeaderKey(key string) string {
	out := []byte(key)

	for i, ch := range out {
		if ch >= 'a' && ch <= 'z' && (i == 0 || !isWordChar(out[i-1])) {
			out[i] = ch - ('a' - 'A')
		}
	}

	return string(out)
}

func isWordChar(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}
