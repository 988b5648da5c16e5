package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore"
)

type moveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type visibilityBody struct {
	Visibility filestore.Visibility `json:"visibility"`
}

func (s *Server) read(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if flag(r, "stream") {
		e, err := s.fs.ReadStream(r.Context(), path)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer e.Stream.Close()

		setEntryHeaders(w, e)
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, e.Stream)
		return
	}

	e, err := s.fs.Read(r.Context(), path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e.Size = int64(len(e.Contents))
	setEntryHeaders(w, e)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.Contents)
}

func (s *Server) head(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r)
	if err != nil {
		w.WriteHeader(statusOf(err))
		return
	}
	e, err := s.fs.GetMetadata(r.Context(), path)
	if err != nil {
		w.WriteHeader(statusOf(err))
		return
	}
	setEntryHeaders(w, e)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) metadata(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.fs.GetMetadata(r.Context(), path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// uploadConfig builds the per-call config from request headers.
func uploadConfig(r *http.Request) (filestore.Config, error) {
	cfg := filestore.Config{}
	if v := r.Header.Get("X-Visibility"); v != "" {
		vis, err := filestore.ParseVisibility(v)
		if err != nil {
			return nil, err
		}
		cfg[filestore.ConfigVisibility] = vis
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		cfg[filestore.ConfigMimetype] = ct
	}
	if cc := r.Header.Get("Cache-Control"); cc != "" {
		cfg["CacheControl"] = cc
	}
	if sc := r.Header.Get("X-Storage-Class"); sc != "" {
		cfg["StorageClass"] = sc
	}
	return cfg, nil
}

func (s *Server) write(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cfg, err := uploadConfig(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e, err := s.fs.WriteStream(r.Context(), path, r.Body, cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var deleted bool
	if flag(r, "dir") {
		deleted, err = s.fs.DeleteDir(r.Context(), path)
	} else {
		deleted, err = s.fs.Delete(r.Context(), path)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) createDir(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cfg, err := uploadConfig(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	delete(cfg, filestore.ConfigMimetype)

	e, err := s.fs.CreateDir(r.Context(), path, cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	dir, err := pathParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.fs.ListEntries(r.Context(), dir, flag(r, "recursive"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getVisibility(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.fs.GetVisibility(r.Context(), path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visibilityBody{Visibility: v})
}

func (s *Server) setVisibility(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body visibilityBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err))
		return
	}
	if err := s.fs.SetVisibility(r.Context(), path, body.Visibility); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func decodeMove(r *http.Request) (moveRequest, error) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err)
	}
	if req.From == "" || req.To == "" {
		return req, errs.New(errs.ErrKindInvalidInput, `"from" and "to" are required`)
	}
	return req, nil
}

func (s *Server) copy(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMove(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := s.fs.Copy(r.Context(), req.From, req.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (s *Server) rename(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMove(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := s.fs.Rename(r.Context(), req.From, req.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}
