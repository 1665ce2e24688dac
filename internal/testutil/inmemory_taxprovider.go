package testutil

import (
	"context"

	"github.com/vidinfra/taxengine/internal/integration/taxprovider"
)

// InMemoryTaxProvider fakes the external tax service for tests. It
// returns a canned response per document ID, or fails with the
// configured error.
type InMemoryTaxProvider struct {
	Responses map[string]*taxprovider.ComputeResponse
	Err       error

	// Requests records every request for assertions.
	Requests []*taxprovider.ComputeRequest
}

func NewInMemoryTaxProvider() *InMemoryTaxProvider {
	return &InMemoryTaxProvider{
		Responses: make(map[string]*taxprovider.ComputeResponse),
	}
}

func (p *InMemoryTaxProvider) ComputeDocument(ctx context.Context, req *taxprovider.ComputeRequest) (*taxprovider.ComputeResponse, error) {
	p.Requests = append(p.Requests, req)

	if p.Err != nil {
		return nil, p.Err
	}

	if resp, ok := p.Responses[req.DocumentID]; ok {
		return resp, nil
	}

	return &taxprovider.ComputeResponse{DocumentID: req.DocumentID}, nil
}
