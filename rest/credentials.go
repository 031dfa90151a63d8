package rest

import (
	"net/http"
	"net/url"
	"strings"
)

// CredentialSource supplies the anti-forgery token when the client has none
// configured explicitly. An empty string means no token is available.
type CredentialSource interface {
	CSRFToken() string
}

type CredentialSourceFunc func() string

func (f CredentialSourceFunc) CSRFToken() string {
	return f()
}

// CookieJarSource reads the KGCSRF cookie that jar holds for u.
func CookieJarSource(jar http.CookieJar, u *url.URL) CredentialSource {
	return CredentialSourceFunc(func() string {
		if jar == nil || u == nil {
			return ""
		}

		for _, cookie := range jar.Cookies(u) {
			if cookie.Name == CSRFCookieName {
				return cookie.Value
			}
		}

		return ""
	})
}

// CookieHeaderSource reads the KGCSRF cookie from a raw "name=value; name=value"
// cookie string.
func CookieHeaderSource(raw string) CredentialSource {
	return CredentialSourceFunc(func() string {
		return csrfFromCookieHeader(raw)
	})
}

func csrfFromCookieHeader(raw string) string {
	prefix := CSRFCookieName + "="

	for part := range strings.SplitSeq(raw, ";") {
		cookie := strings.TrimSpace(part)
		if strings.HasPrefix(cookie, prefix) {
			return strings.TrimPrefix(cookie, prefix)
		}
	}

	return ""
}
