package proxy

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func gatewayFor(t *testing.T, upstream http.Handler) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	app := fiber.New()
	app.All("/api/v1/*", New(srv.URL, 2*time.Second, zap.NewNop()).Mount("/api/v1"))
	return app
}

func TestMountForwardsPathQueryAndBody(t *testing.T) {
	var gotPath, gotQuery, gotBody, gotAuth string
	app := gatewayFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/sessions/abc/events?x=1", bytes.NewBufferString(`{"type":"wheel"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer t")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/sessions/abc/events", gotPath)
	assert.Equal(t, "x=1", gotQuery)
	assert.Equal(t, `{"type":"wheel"}`, gotBody)
	assert.Equal(t, "Bearer t", gotAuth)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestMultipartIsReencoded(t *testing.T) {
	var gotFile, gotName string
	app := gatewayFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err == nil {
			data, _ := io.ReadAll(f)
			gotFile = string(data)
		}
		gotName = r.FormValue("name")
		w.WriteHeader(http.StatusOK)
	}))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "plan.svg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("<svg/>"))
	require.NoError(t, mw.WriteField("name", "Ground"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/projects/p1/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<svg/>", gotFile)
	assert.Equal(t, "Ground", gotName)
}

func TestUnreachableUpstreamIs502(t *testing.T) {
	app := fiber.New()
	app.All("/api/v1/*", New("http://127.0.0.1:1", time.Second, zap.NewNop()).Mount("/api/v1"))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/projects", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
