package forwarder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/ergsync/lib/mycontext"
	"github.com/MarcGrol/ergsync/lib/myerrors"
	"github.com/MarcGrol/ergsync/lib/myhttp"
	"github.com/MarcGrol/ergsync/lib/myhttpclient"
	"github.com/MarcGrol/ergsync/lib/mylog"
	"github.com/MarcGrol/ergsync/lib/myuuid"
	"github.com/MarcGrol/ergsync/services/oauth/oauthclient"
)

const (
	ProxyPath = "/api/proxy"
	TokenPath = "/api/token"
)

var cacheHeaders = []string{"ETag", "Last-Modified", "Cache-Control"}

type TokenRequest struct {
	Code         string `json:"code" form:"code"`
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
	GrantType    string `json:"grant_type" form:"grant_type"`
}

type webService struct {
	cfg         Config
	sender      myhttpclient.HTTPSender
	tokenClient *oauthclient.Client
	uuider      myuuid.UUIDer
	cors        myhttp.CORS
	logger      mylog.Logger
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(cfg Config, sender myhttpclient.HTTPSender, uuider myuuid.UUIDer) *webService {
	cfg = cfg.withDefaults()
	return &webService{
		cfg:         cfg,
		sender:      sender,
		tokenClient: oauthclient.NewOAuthClient(cfg.TokenURL, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI, sender),
		uuider:      uuider,
		cors: myhttp.CORS{
			AllowedOrigin:  cfg.AllowedOrigin,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: cfg.allowedHeaders(),
		},
		logger: mylog.New("forwarder"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc(ProxyPath, s.endpoint(http.MethodGet, s.proxyPage()))
	router.HandleFunc(TokenPath, s.endpoint(http.MethodPost, s.tokenPage()))
}

// endpoint adds the CORS headers, answers preflights and rejects every method but the given one.
func (s *webService) endpoint(method string, handler func(c context.Context, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r, s.uuider)
		s.cors.Apply(w)

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case method:
			handler(c, w, r)
		default:
			myhttp.NewWriter(s.logger).WriteError(c, w, myerrors.NewMethodNotAllowedError(fmt.Errorf("Method not allowed")))
		}
	}
}

func (s *webService) proxyPage() func(c context.Context, w http.ResponseWriter, r *http.Request) {
	return func(c context.Context, w http.ResponseWriter, r *http.Request) {
		writer := myhttp.NewWriter(s.logger)

		credential := strings.TrimSpace(r.Header.Get(s.cfg.CredentialHeader))
		if s.cfg.usesAuthorizationHeader() {
			credential = strings.TrimSpace(strings.TrimPrefix(credential, "Bearer "))
		}
		if credential == "" {
			writer.WriteError(c, w, myerrors.NewUnauthorizedError(fmt.Errorf("%s header required", s.cfg.CredentialHeader)))
			return
		}

		path := r.URL.Query().Get("path")
		if path == "" {
			writer.WriteError(c, w, myerrors.NewInvalidInputError(fmt.Errorf("Path parameter required")))
			return
		}

		err := s.checkPath(path)
		if err != nil {
			s.logger.Log(c, path, mylog.SeverityWarn, "Blocked proxy request: %s", err)
			writer.WriteError(c, w, err)
			return
		}

		resp, err := s.sender.Send(c, myhttpclient.Request{
			Method: http.MethodGet,
			URL:    s.cfg.UpstreamBaseURL + path,
			Headers: map[string]string{
				"Authorization": "Bearer " + credential,
				"Accept":        "application/json",
			},
		})
		if err != nil {
			s.logger.Log(c, path, mylog.SeverityError, "Upstream call failed: %s", err)
			writer.WriteError(c, w, myerrors.NewInternalError(fmt.Errorf("Error reaching upstream")))
			return
		}

		if s.cfg.ForwardCacheHeaders {
			for _, name := range cacheHeaders {
				value := resp.Headers.Get(name)
				if value != "" {
					w.Header().Set(name, value)
				}
			}
		}

		if !resp.IsSuccess() && !json.Valid(resp.Body) {
			s.logger.Log(c, path, mylog.SeverityWarn, "Upstream replied %d with non JSON body", resp.StatusCode)
			writer.Write(c, w, resp.StatusCode, myhttp.ErrorResponse{Error: string(resp.Body)})
			return
		}

		writer.WriteRaw(c, w, resp.StatusCode, resp.Body)
	}
}

// checkPath allows only paths under the configured prefix and without traversal sequences.
func (s *webService) checkPath(path string) error {
	if !strings.HasPrefix(path, s.cfg.AllowedPathPrefix) {
		return myerrors.NewForbiddenError(fmt.Errorf("Forbidden: Invalid API path"))
	}
	if strings.Contains(path, "..") || strings.Contains(path, "//") {
		return myerrors.NewForbiddenError(fmt.Errorf("Forbidden: Invalid path format"))
	}
	return nil
}

func (s *webService) tokenPage() func(c context.Context, w http.ResponseWriter, r *http.Request) {
	return func(c context.Context, w http.ResponseWriter, r *http.Request) {
		writer := myhttp.NewWriter(s.logger)

		req, err := decodeTokenRequest(r)
		if err != nil {
			writer.WriteError(c, w, myerrors.NewInvalidInputError(err))
			return
		}

		if req.Code == "" && req.RefreshToken == "" {
			writer.WriteError(c, w, myerrors.NewInvalidInputError(fmt.Errorf("Authorization code or refresh token is required")))
			return
		}

		status, body, err := s.tokenClient.RequestToken(c, grantFor(req))
		if err != nil {
			if errors.Is(err, oauthclient.ErrNotConfigured) || errors.Is(err, oauthclient.ErrRedirectURIRequired) {
				s.logger.Log(c, "token", mylog.SeverityError, "Token forwarding misconfigured: %s", err)
				writer.WriteError(c, w, myerrors.NewInternalError(fmt.Errorf("Server configuration error")))
				return
			}
			s.logger.Log(c, "token", mylog.SeverityError, "Token forwarding failed: %s", err)
			writer.WriteError(c, w, myerrors.NewInternalError(fmt.Errorf("Internal server error")))
			return
		}

		writer.WriteRaw(c, w, status, body)
	}
}

// grantFor refreshes when asked to, or when a refresh token is all there is.
func grantFor(req TokenRequest) oauthclient.GrantRequest {
	if req.RefreshToken != "" && (req.GrantType == oauthclient.GrantTypeRefreshToken || req.Code == "") {
		return oauthclient.GrantRequest{
			GrantType:    oauthclient.GrantTypeRefreshToken,
			RefreshToken: req.RefreshToken,
		}
	}
	return oauthclient.GrantRequest{
		GrantType: oauthclient.GrantTypeAuthorizationCode,
		Code:      req.Code,
	}
}

func decodeTokenRequest(r *http.Request) (TokenRequest, error) {
	req := TokenRequest{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		err := r.ParseForm()
		if err != nil {
			return req, fmt.Errorf("Invalid form body: %w", err)
		}
		err = formcodec.NewDecoder().Decode(&req, r.PostForm)
		if err != nil {
			return req, fmt.Errorf("Invalid form body: %w", err)
		}
		return req, nil
	}

	if r.Body == nil {
		return req, nil
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return req, fmt.Errorf("Invalid JSON body: %w", err)
	}
	return req, nil
}
