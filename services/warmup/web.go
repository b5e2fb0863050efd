package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/ergsync/lib/mycontext"
	"github.com/MarcGrol/ergsync/lib/myhttp"
	"github.com/MarcGrol/ergsync/lib/mylog"
	"github.com/MarcGrol/ergsync/lib/myuuid"
)

type Status struct {
	Status                  string   `json:"status"`
	TokenEndpointConfigured bool     `json:"tokenEndpointConfigured"`
	Missing                 []string `json:"missing,omitempty"`
}

type webService struct {
	logger  mylog.Logger
	uuider  myuuid.UUIDer
	missing []string
}

// NewService reports readiness; missing names the settings the token endpoint lacks.
func NewService(missing []string, uuider myuuid.UUIDer) *webService {
	return &webService{
		logger:  mylog.New("warmup"),
		uuider:  uuider,
		missing: missing,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
	router.HandleFunc("/healthz", s.warmupPage()).Methods("GET")
}

func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r, s.uuider)

		myhttp.NewWriter(s.logger).Write(c, w, http.StatusOK, Status{
			Status:                  "ok",
			TokenEndpointConfigured: len(s.missing) == 0,
			Missing:                 s.missing,
		})
	}
}
