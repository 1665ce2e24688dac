package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	"github.com/vidinfra/taxengine/internal/types"
)

// SourceLine is the canonical shape a heterogeneous source record
// (invoice line, order line, POS line) reduces to before building.
// UnitPrice is a pointer so "no price" and "zero price" stay distinct.
type SourceLine struct {
	LineID           string
	Quantity         decimal.Decimal
	UnitPrice        *decimal.Decimal
	DiscountFraction decimal.Decimal
	Currency         string
	TaxCodes         []string
}

// LineSource adapts a caller-owned record into a SourceLine. Each
// source type implements this once instead of the engine reading
// per-module field names.
type LineSource interface {
	AsTaxableLine() SourceLine
}

// StackEntry is one resolved position in a line's tax stack. Group
// entries carry their children materialized in the group's internal
// order so the engine never touches the registry.
type StackEntry struct {
	Definition *taxrate.TaxDefinition
	Children   []*StackEntry
}

// TaxableLine is the canonical engine input, produced by the Builder.
// GrossAmount is computed once and read-only from here on.
type TaxableLine struct {
	LineID           string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	DiscountFraction decimal.Decimal
	Currency         string
	Precision        int32
	GrossAmount      decimal.Decimal
	Stack            []*StackEntry

	CompanyRoundingMethod types.RoundingMethod
	RoundingMode          types.RoundingMode
}

// TaxAmount is one leaf tax's contribution on one line. Groups are
// expanded to their children; the group identity survives only as the
// aggregation key.
type TaxAmount struct {
	TaxID   string `json:"tax_id"`
	TaxCode string `json:"tax_code"`
	GroupID string `json:"group_id,omitempty"`

	RawAmount     decimal.Decimal `json:"raw_amount"`
	RoundedAmount decimal.Decimal `json:"rounded_amount"`

	// RoundingMethod is resolved per tax: definition override first,
	// company default otherwise.
	RoundingMethod types.RoundingMethod `json:"rounding_method"`
}

// ReconciliationWarning flags a divergence between locally computed
// and externally supplied totals. Non-fatal: the external result still
// wins, callers are notified for manual review.
type ReconciliationWarning struct {
	LineID        string          `json:"line_id"`
	LocalTotal    decimal.Decimal `json:"local_total"`
	ExternalTotal decimal.Decimal `json:"external_total"`
	Message       string          `json:"message"`
}

// Result is the per-line computation output.
type Result struct {
	LineID    string `json:"line_id"`
	Currency  string `json:"currency"`
	Precision int32  `json:"precision"`

	// BaseAmount is what the first tax is computed on: the gross
	// amount, minus reversed-out included taxes when present.
	BaseAmount  decimal.Decimal `json:"base_amount"`
	RoundedBase decimal.Decimal `json:"rounded_base"`

	TaxAmounts []*TaxAmount `json:"tax_amounts"`

	// RawTotal is base plus the sum of raw tax amounts, before any
	// rounding. It is the authoritative target for the distributor.
	RawTotal decimal.Decimal `json:"raw_total"`

	// TotalAmount is rounded base plus rounded taxes. Provisional while
	// PendingDocumentRounding is set; it must not be persisted as final
	// until the aggregator has distributed the document rounding.
	TotalAmount decimal.Decimal `json:"total_amount"`

	PendingDocumentRounding bool `json:"pending_document_rounding,omitempty"`

	Warnings []*ReconciliationWarning `json:"warnings,omitempty"`
}

// AggregatedTax is the per-document sum for one tax, or one tax group,
// across every line.
type AggregatedTax struct {
	TaxID   string `json:"tax_id,omitempty"`
	TaxCode string `json:"tax_code,omitempty"`
	GroupID string `json:"group_id,omitempty"`
	IsGroup bool   `json:"is_group,omitempty"`

	BaseAmountSum decimal.Decimal `json:"base_amount_sum"`
	TaxAmountSum  decimal.Decimal `json:"tax_amount_sum"`
}

// DocumentResult is the whole-document output consumed by accounting
// postings and reports.
type DocumentResult struct {
	DocumentID string `json:"document_id"`

	// ComputationID is a short human-readable reference for this
	// computation run, suitable for support tickets and audit trails.
	ComputationID string `json:"computation_id"`

	Currency string                    `json:"currency"`
	Strategy types.ComputationStrategy `json:"strategy"`

	Lines      []*Result        `json:"lines"`
	Aggregates []*AggregatedTax `json:"aggregates"`

	TotalBase   decimal.Decimal `json:"total_base"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	Warnings []*ReconciliationWarning `json:"warnings,omitempty"`
}

// ExternalTaxAmount is one provider-supplied tax amount.
type ExternalTaxAmount struct {
	TaxCode string          `json:"tax_code"`
	TaxID   string          `json:"tax_id,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

// ExternalLineResult is the provider's authoritative computation for
// one line.
type ExternalLineResult struct {
	LineID     string               `json:"line_id"`
	TaxAmounts []*ExternalTaxAmount `json:"tax_amounts"`
	Total      decimal.Decimal      `json:"total"`
}
