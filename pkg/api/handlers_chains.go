package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redgraph/chainmap/pkg/chain"
	"github.com/redgraph/chainmap/pkg/store"
)

func (s *Server) handleListChains(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	summaries, err := s.chains.ListByProject(r.Context(), projectID)
	if err != nil {
		s.registry.RecordChainOperation("list", "error")
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.registry.RecordChainOperation("list", "ok")
	s.respondJSON(w, http.StatusOK, ChainListResponse{ProjectID: projectID, Chains: summaries})
}

func (s *Server) handleCreateChain(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	var payload ChainPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := payload.checkRefs(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft := payload.toDraft("", projectID)
	if err := draft.Validate(); err != nil {
		s.respondChainError(w, "create", err)
		return
	}

	created, err := s.chains.Create(r.Context(), draft)
	if err != nil {
		s.respondChainError(w, "create", err)
		return
	}

	s.registry.RecordChainOperation("create", "ok")
	s.registry.ChainsTotal.Inc()
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetChain(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("chainID")

	stored, err := s.chains.Get(r.Context(), chainID)
	if err != nil {
		s.respondChainError(w, "get", err)
		return
	}

	s.registry.RecordChainOperation("get", "ok")
	s.respondJSON(w, http.StatusOK, stored)
}

func (s *Server) handleUpdateChain(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("chainID")

	var payload ChainPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := payload.checkRefs(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft := payload.toDraft(chainID, "")
	if err := draft.Validate(); err != nil {
		s.respondChainError(w, "update", err)
		return
	}

	saved, err := s.chains.Update(r.Context(), chainID, draft)
	if err != nil {
		s.respondChainError(w, "update", err)
		return
	}

	s.registry.RecordChainOperation("update", "ok")
	s.registry.ChainStepsPerSave.Observe(float64(len(saved.Steps)))
	s.respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteChain(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("chainID")

	if err := s.chains.Delete(r.Context(), chainID); err != nil {
		s.respondChainError(w, "delete", err)
		return
	}

	s.registry.RecordChainOperation("delete", "ok")
	s.registry.ChainsTotal.Dec()
	w.WriteHeader(http.StatusNoContent)
}

// respondChainError maps chain/store failures onto status codes
func (s *Server) respondChainError(w http.ResponseWriter, operation string, err error) {
	var verr *chain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.registry.RecordChainOperation(operation, "invalid")
		s.respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, store.ErrEmptyChain):
		s.registry.RecordChainOperation(operation, "invalid")
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrChainNotFound):
		s.registry.RecordChainOperation(operation, "not_found")
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.registry.RecordChainOperation(operation, "error")
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
