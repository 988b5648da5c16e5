package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/filestore/objectfs"
	"github.com/koustreak/bucketfs/internal/logger"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	State string `json:"state,omitempty"`
}

// statusOf maps an error kind to an HTTP status.
func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindNotSupported:
		return http.StatusNotImplemented
	case errs.ErrKindConnectionFailed, errs.ErrKindTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorBody{Error: err.Error(), Kind: errs.KindOf(err).String()}

	var re *objectfs.RenameError
	if errors.As(err, &re) {
		body.State = re.State.String()
	}

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]interface{}{
			"path": r.URL.Path,
		})
	}
	writeJSON(w, status, body)
}

// pathParam returns the wildcard part of the route, unescaped.
func pathParam(r *http.Request) (string, error) {
	p := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return p, nil
	}
	unescaped, err := url.PathUnescape(p)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindInvalidInput, "invalid path", err)
	}
	return unescaped, nil
}

// flag reports whether query parameter name is a true value ("1", "true").
func flag(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// setEntryHeaders describes e in response headers.
func setEntryHeaders(w http.ResponseWriter, e *filestore.Entry) {
	h := w.Header()
	mt := e.Mimetype
	if mt == "" {
		mt = "application/octet-stream"
	}
	h.Set("Content-Type", mt)
	h.Set("Content-Length", strconv.FormatInt(e.Size, 10))
	if e.ETag != "" {
		h.Set("ETag", e.ETag)
	}
	if e.Timestamp != 0 {
		h.Set("Last-Modified", time.Unix(e.Timestamp, 0).UTC().Format(http.TimeFormat))
	}
	if e.StorageClass != "" {
		h.Set("X-Storage-Class", e.StorageClass)
	}
	if e.VersionID != "" {
		h.Set("X-Version-Id", e.VersionID)
	}
	for k, v := range e.Metadata {
		h.Set("X-Meta-"+k, v)
	}
}
