package api

import (
	"fmt"

	"github.com/redgraph/chainmap/pkg/chain"
	"github.com/redgraph/chainmap/pkg/topology"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// StepPayload is the wire form of one chain step. It mirrors the
// chain.Step JSON shape so a fetched chain saves back unchanged.
type StepPayload struct {
	ID                string           `json:"id,omitempty"`
	EntityRef         topology.NodeRef `json:"entityRef"`
	SequenceOrder     int              `json:"sequenceOrder" validate:"required,min=1"`
	MethodNotes       string           `json:"methodNotes,omitempty"`
	IsBranchPoint     bool             `json:"isBranchPoint"`
	BranchDescription string           `json:"branchDescription,omitempty"`
}

// ChainPayload is the wire form of a chain create/update request.
// Identity fields in the body are ignored; the URL is authoritative.
type ChainPayload struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description,omitempty"`
	Color       string        `json:"color" validate:"required"`
	Steps       []StepPayload `json:"steps" validate:"required,min=1,dive"`
}

// checkRefs rejects steps whose entity reference is malformed
func (p *ChainPayload) checkRefs() error {
	for i, sp := range p.Steps {
		if sp.EntityRef.ID == "" {
			return fmt.Errorf("step %d: entity reference id is required", i+1)
		}
		if !sp.EntityRef.Kind.Valid() {
			return fmt.Errorf("step %d: unknown entity kind %q", i+1, sp.EntityRef.Kind)
		}
	}
	return nil
}

// toDraft converts the payload to the domain draft for the given identity
func (p *ChainPayload) toDraft(chainID, projectID string) *chain.Draft {
	draft := &chain.Draft{
		ID:          chainID,
		ProjectID:   projectID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
	}
	for _, sp := range p.Steps {
		draft.Steps = append(draft.Steps, &chain.Step{
			ID:                sp.ID,
			EntityRef:         sp.EntityRef,
			SequenceOrder:     sp.SequenceOrder,
			MethodNotes:       sp.MethodNotes,
			IsBranchPoint:     sp.IsBranchPoint,
			BranchDescription: sp.BranchDescription,
		})
	}
	draft.Normalize()
	return draft
}

// CreateHostRequest adds a host to a project
type CreateHostRequest struct {
	Address  string `json:"address" validate:"required,max=255"`
	Hostname string `json:"hostname,omitempty" validate:"omitempty,max=255"`
	OS       string `json:"os,omitempty" validate:"omitempty,max=100"`
}

// CreateServiceRequest adds a service to a host
type CreateServiceRequest struct {
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Protocol string `json:"protocol" validate:"required,oneof=tcp udp"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
	Banner   string `json:"banner,omitempty" validate:"omitempty,max=1024"`
}

// TopologyResponse is the graph view of a project
type TopologyResponse struct {
	ProjectID string           `json:"projectId"`
	Nodes     []*topology.Node `json:"nodes"`
}

// ChainListResponse lists a project's chains in creation order
type ChainListResponse struct {
	ProjectID string          `json:"projectId"`
	Chains    []chain.Summary `json:"chains"`
}
