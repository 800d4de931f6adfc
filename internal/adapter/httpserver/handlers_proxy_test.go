package httpserver

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/proxy"
)

type upstreamRequest struct {
	method, path, contentType, auth string
	body                            []byte
}

func newUpstream(t *testing.T, got *upstreamRequest) *httptest.Server {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		*got = upstreamRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get(echo.HeaderContentType),
			auth:        r.Header.Get(echo.HeaderAuthorization),
			body:        body,
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(backend.Close)
	return backend
}

// withSessionProxy wires the proxy the way NewServer does.
func withSessionProxy(t *testing.T, target string) func(*Server) {
	return func(s *Server) {
		mw, err := proxy.Middleware(proxy.Config{Target: target, Token: s.sessionToken})
		require.NoError(t, err)
		s.proxy = mw
	}
}

func multipartBody(t *testing.T) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Foo"))
	part, err := w.CreateFormFile("file", "codes.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("ELEC,ACME\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func TestAPIProxy_ForwardsBodiesUnread(t *testing.T) {
	multi, multiType := multipartBody(t)

	tests := []struct {
		name        string
		body        []byte
		contentType string
	}{
		{"form", []byte(url.Values{"name": {"Foo"}, "code": {"ABCD"}}.Encode()), echo.MIMEApplicationForm},
		{"multipart", multi, multiType},
		{"json", []byte(`{"name":"Foo","code":"ABCD"}`), echo.MIMEApplicationJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got upstreamRequest
			backend := newUpstream(t, &got)
			srv := newTestServer(t, &mockAppService{}, withSessionProxy(t, backend.URL))

			req := withCSRF(httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewReader(tt.body)))
			req.Header.Set(echo.HeaderContentType, tt.contentType)
			rec := httptest.NewRecorder()
			srv.echo.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, http.MethodPost, got.method)
			assert.Equal(t, "/categories", got.path)
			assert.Equal(t, tt.contentType, got.contentType)
			assert.Equal(t, tt.body, got.body)
		})
	}
}

func TestAPIProxy_FormTokenIsNotAccepted(t *testing.T) {
	var got upstreamRequest
	backend := newUpstream(t, &got)
	srv := newTestServer(t, &mockAppService{}, withSessionProxy(t, backend.URL))

	form := url.Values{"csrf_token": {testCSRFToken}, "name": {"Foo"}}
	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Contains(t, []int{http.StatusBadRequest, http.StatusForbidden}, rec.Code)
	assert.Empty(t, got.method, "nothing reaches the backend")
}

func TestAPIProxy_InjectsSessionToken(t *testing.T) {
	var got upstreamRequest
	backend := newUpstream(t, &got)
	srv := newTestServer(t, &mockAppService{}, withSessionProxy(t, backend.URL))

	req := withCSRF(httptest.NewRequest(http.MethodGet, "/api/statuses", nil))
	req = withSessionCookie(t, srv, req, userSession)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer user-token", got.auth)
}
