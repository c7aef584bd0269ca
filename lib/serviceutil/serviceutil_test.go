package serviceutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", BearerToken("Bearer abc"))
	require.Equal(t, "abc", BearerToken("bearer abc"))
	require.Equal(t, "", BearerToken("Basic abc"))
	require.Equal(t, "", BearerToken("abc"))
	require.Equal(t, "", BearerToken(""))
}

func TestTokenMatches(t *testing.T) {
	require.True(t, TokenMatches("secret", "secret"))
	require.False(t, TokenMatches("secre", "secret"))
	require.False(t, TokenMatches("secret\x00", "secret"))
	require.False(t, TokenMatches("", "secret"))
}

func TestVerifyAccessToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		token  string
		header string
		expect int
	}{
		{token: "secret", header: "Bearer secret", expect: http.StatusNoContent},
		{token: "secret", header: "Bearer wrong", expect: http.StatusUnauthorized},
		{token: "secret", header: "Bearer secre", expect: http.StatusUnauthorized},
		{token: "secret", header: "Bearer secrets", expect: http.StatusUnauthorized},
		{token: "secret", header: "Basic secret", expect: http.StatusUnauthorized},
		{token: "secret", header: "", expect: http.StatusUnauthorized},
		{token: "", header: "", expect: http.StatusNoContent},
	}

	for _, test := range cases {
		handler := VerifyAccessToken(test.token)(ok)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if test.header != "" {
			req.Header.Set("Authorization", test.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, test.expect, rec.Code, test)
	}
}
