package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vidinfra/taxengine/internal/domain/calculation"
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/types"
	"github.com/vidinfra/taxengine/internal/validator"
)

// ComputeLineRequest is one source line of a document. It adapts
// whatever shape the caller has (invoice line, order line, POS line)
// into the canonical taxable line.
type ComputeLineRequest struct {
	// line_id identifies the line in the caller's document
	LineID string `json:"line_id"`

	// quantity may be negative for credit/return lines
	Quantity decimal.Decimal `json:"quantity"`

	// unit_price is omitted (not zero) when the source has no price
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`

	// discount_fraction is in range 0..1
	DiscountFraction decimal.Decimal `json:"discount_fraction"`

	// currency defaults to the document currency when empty
	Currency string `json:"currency,omitempty"`

	// tax_codes is the ordered tax stack applicable to this line
	TaxCodes []string `json:"tax_codes"`
}

// AsTaxableLine implements calculation.LineSource.
func (l ComputeLineRequest) AsTaxableLine() calculation.SourceLine {
	return calculation.SourceLine{
		LineID:           l.LineID,
		Quantity:         l.Quantity,
		UnitPrice:        l.UnitPrice,
		DiscountFraction: l.DiscountFraction,
		Currency:         l.Currency,
		TaxCodes:         l.TaxCodes,
	}
}

// ComputeDocumentRequest asks for one document's taxes.
type ComputeDocumentRequest struct {
	// document_id is generated when empty
	DocumentID string `json:"document_id,omitempty"`

	// currency applies to every line unless a line overrides it; all
	// lines of one document must share one currency
	Currency string `json:"currency" validate:"required"`

	// rounding_method overrides the company default for this document
	RoundingMethod *types.RoundingMethod `json:"rounding_method,omitempty"`

	// strategy selects local computation or the external provider;
	// defaults to local
	Strategy types.ComputationStrategy `json:"strategy,omitempty"`

	Lines []ComputeLineRequest `json:"lines"`
}

// Validate validates the ComputeDocumentRequest
func (r *ComputeDocumentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.RoundingMethod != nil {
		if err := r.RoundingMethod.Validate(); err != nil {
			return err
		}
	}

	if r.Strategy != "" {
		if err := r.Strategy.Validate(); err != nil {
			return err
		}
	}

	for _, line := range r.Lines {
		if line.Currency != "" && line.Currency != r.Currency {
			return ierr.NewError("mixed currencies in one document").
				WithHintf("Line '%s' uses currency '%s' but the document uses '%s'", line.LineID, line.Currency, r.Currency).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// ComputeDocumentResponse wraps the document computation result with
// display metadata for the caller.
type ComputeDocumentResponse struct {
	*calculation.DocumentResult `json:",inline"`

	// currency_symbol is display-only; computation never touches it
	CurrencySymbol string `json:"currency_symbol,omitempty"`
}

// NewComputeDocumentResponse decorates a document result for the API.
func NewComputeDocumentResponse(doc *calculation.DocumentResult) *ComputeDocumentResponse {
	return &ComputeDocumentResponse{
		DocumentResult: doc,
		CurrencySymbol: types.GetCurrencySymbol(doc.Currency),
	}
}

// BatchComputeRequest asks for many independent documents at once.
type BatchComputeRequest struct {
	Documents []*ComputeDocumentRequest `json:"documents" validate:"required"`
}

// BatchComputeItem is one document's outcome in a batch. Documents fail
// independently: a bad document reports its error here without
// aborting its siblings.
type BatchComputeItem struct {
	DocumentID string                   `json:"document_id"`
	Result     *ComputeDocumentResponse `json:"result,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// BatchComputeResponse preserves request order.
type BatchComputeResponse struct {
	Items []*BatchComputeItem `json:"items"`
}
