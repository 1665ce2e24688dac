package taxprovider

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vidinfra/taxengine/internal/config"
	"github.com/vidinfra/taxengine/internal/domain/calculation"
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/httpclient"
)

// Client talks to an external tax authority service. The provider's
// amounts are authoritative for documents routed through it; the
// engine reconciles them against its own computation and surfaces
// divergences as warnings.
type Client interface {
	ComputeDocument(ctx context.Context, req *ComputeRequest) (*ComputeResponse, error)
}

// ComputeRequest is the wire request. The provider sees the same
// canonical line shape the local engine does.
type ComputeRequest struct {
	DocumentID string        `json:"document_id"`
	Currency   string        `json:"currency"`
	Lines      []RequestLine `json:"lines"`
}

type RequestLine struct {
	LineID      string          `json:"line_id"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
	Quantity    decimal.Decimal `json:"quantity"`
	TaxCodes    []string        `json:"tax_codes"`
}

// ComputeResponse carries the provider's per-line authoritative amounts.
type ComputeResponse struct {
	DocumentID string                            `json:"document_id"`
	Lines      []*calculation.ExternalLineResult `json:"lines"`
}

type client struct {
	cfg  config.ProviderConfig
	http httpclient.Client
}

func NewClient(cfg config.ProviderConfig, http httpclient.Client) Client {
	return &client{cfg: cfg, http: http}
}

func (c *client) ComputeDocument(ctx context.Context, req *ComputeRequest) (*ComputeResponse, error) {
	if !c.cfg.Enabled {
		return nil, ierr.NewError("external tax provider is not configured").
			WithHint("Enable and configure the external tax provider before routing documents to it").
			Mark(ierr.ErrInvalidOperation)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode the provider request").
			Mark(ierr.ErrSystem)
	}

	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    c.cfg.BaseURL + "/v1/tax/compute",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.cfg.APIKey,
		},
		Body: payload,
	})
	if err != nil {
		return nil, err
	}

	var out ComputeResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Provider returned an unparseable response").
			Mark(ierr.ErrHTTPClient)
	}

	return &out, nil
}
