package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ssargent/factoryconfig/pkg/archive"
	"github.com/ssargent/factoryconfig/pkg/bootenv"
	"github.com/ssargent/factoryconfig/pkg/medium"
	"github.com/ssargent/factoryconfig/pkg/store"
)

// maxBodySize bounds PUT bodies; the editable fields fit in far less.
const maxBodySize = 4096

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	load := summarize(s.lastLoad)
	s.mu.Unlock()

	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy", "load": load.Outcome})
}

func (s *Server) configResponse() (ConfigResponse, error) {
	view, err := s.fc.View()
	if err != nil {
		return ConfigResponse{}, err
	}
	return ConfigResponse{Config: view, Load: summarize(s.lastLoad)}, nil
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.configResponse()
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, resp)
}

// handlePutConfig applies a partial update in memory. Nothing reaches the
// medium until save.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var fields store.Fields
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fields); err != nil {
		sendError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fc.Apply(fields); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp, err := s.configResponse()
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, resp)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resp SaveResponse
	if s.archive != nil {
		image, err := medium.ReadAll(s.medium)
		if err != nil {
			sendError(w, fmt.Sprintf("Failed to snapshot medium: %v", err), http.StatusInternalServerError)
			return
		}
		id, err := s.archive.Put(&archive.Snapshot{
			Label:   "before api save",
			Source:  s.config.Source,
			Outcome: summarize(s.lastLoad).Outcome,
			Serial:  s.fc.Base.SerialNumber,
			Model:   s.fc.Base.Model(),
			Image:   image,
		})
		if err != nil {
			sendError(w, fmt.Sprintf("Failed to snapshot medium: %v", err), http.StatusInternalServerError)
			return
		}
		resp.SnapshotID = id.String()
	}

	res, err := store.NewWriter(s.medium, s.opts...).Write(s.fc)
	s.metrics.RecordWrite(res, err)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp.Segments = res.Segments
	resp.BytesSent = res.BytesSent
	resp.EndOffset = res.EndOffset
	sendSuccess(w, resp)
}

// handleReload discards in-memory edits and decodes the medium again. The
// response carries the load outcome even when defaults were substituted.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reload(); err != nil {
		s.log.WithError(err).Warn("Reload fell back")
	}
	resp, err := s.configResponse()
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, resp)
}

func (s *Server) handleBootEnv(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := bootenv.Compute(s.fc)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, env)
}
