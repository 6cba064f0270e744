package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redgraph/chainmap/pkg/topology"
)

func (s *Server) handleGetTopology(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	s.respondJSON(w, http.StatusOK, TopologyResponse{
		ProjectID: projectID,
		Nodes:     s.inventory.ProjectNodes(projectID),
	})
}

func (s *Server) handleCreateHost(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	var req CreateHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	host, err := s.inventory.AddHost(projectID, req.Address, req.Hostname, req.OS)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, host)
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	hostID := r.PathValue("hostID")

	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	svc, err := s.inventory.AddService(hostID, req.Port, req.Protocol, req.Name, req.Banner)
	if err != nil {
		if errors.Is(err, topology.ErrHostNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, svc)
}
