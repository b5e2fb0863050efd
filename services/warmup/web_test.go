package warmup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/ergsync/lib/myuuid"
)

func TestWarmup(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		router := mux.NewRouter()
		NewService(nil, myuuid.RealUUIDer{}).RegisterEndpoints(context.TODO(), router)

		response := httptest.NewRecorder()
		router.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/_ah/warmup", nil))

		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"status":"ok","tokenEndpointConfigured":true}`, response.Body.String())
	})

	t.Run("secret missing", func(t *testing.T) {
		router := mux.NewRouter()
		NewService([]string{"CONCEPT2_CLIENT_SECRET"}, myuuid.RealUUIDer{}).RegisterEndpoints(context.TODO(), router)

		response := httptest.NewRecorder()
		router.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"status":"ok","tokenEndpointConfigured":false,"missing":["CONCEPT2_CLIENT_SECRET"]}`, response.Body.String())
	})
}
