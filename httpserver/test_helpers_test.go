package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movierating/httpserver"
	"movierating/pkg/config"

	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{AllowOrigins: "*"}
}

func newJSONRequest(method, path, body string) *http.Request {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	return request
}

func serve(server *httpserver.Server, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	server.Router.ServeHTTP(recorder, request)
	return recorder
}

func decodeJSON(t testing.TB, recorder *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), v), "body: %s", recorder.Body.String())
}

func decodeDetail(t testing.TB, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httpserver.ErrorResponse
	decodeJSON(t, recorder, &resp)
	return resp.Detail
}
