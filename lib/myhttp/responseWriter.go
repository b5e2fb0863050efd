package myhttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MarcGrol/ergsync/lib/myerrors"
	"github.com/MarcGrol/ergsync/lib/mylog"
)

type ResponseWriter interface {
	WriteError(c context.Context, w http.ResponseWriter, err error)
	Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{})
	WriteRaw(c context.Context, w http.ResponseWriter, httpStatus int, body []byte)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewWriter(logger mylog.Logger) ResponseWriter {
	return &responseWriter{
		logger: logger,
	}
}

type responseWriter struct {
	logger mylog.Logger
}

func (rw responseWriter) WriteError(c context.Context, w http.ResponseWriter, err error) {
	httpStatus := myerrors.GetHTTPStatus(err)
	severity := mylog.SeverityWarn
	if httpStatus >= http.StatusInternalServerError {
		severity = mylog.SeverityError
	}
	rw.logger.Log(c, "", severity, "Error response: http-status:%d, error-msg:%s", httpStatus, err)
	rw.write(c, w, httpStatus, ErrorResponse{
		Error: myerrors.GetMessage(err),
	})
}

func (rw responseWriter) Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{}) {
	rw.logger.Log(c, "", mylog.SeverityDebug, "Success response: http-status:%d", httpStatus)
	rw.write(c, w, httpStatus, resp)
}

// WriteRaw writes an already encoded JSON body, e.g. one mirrored from upstream.
func (rw responseWriter) WriteRaw(c context.Context, w http.ResponseWriter, httpStatus int, body []byte) {
	rw.logger.Log(c, "", mylog.SeverityDebug, "Raw response: http-status:%d, %d bytes", httpStatus, len(body))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_, err := w.Write(body)
	if err != nil {
		rw.logger.Log(c, "", mylog.SeverityError, "Error writing raw response: %s", err)
	}
}

func (rw responseWriter) write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{}) {
	payload, err := json.Marshal(resp)
	if err != nil {
		rw.logger.Log(c, "", mylog.SeverityError, "Error encoding response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_, err = w.Write(payload)
	if err != nil {
		rw.logger.Log(c, "", mylog.SeverityError, "Error writing response: %s", err)
	}
}
