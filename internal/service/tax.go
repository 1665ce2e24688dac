package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/vidinfra/taxengine/internal/api/dto"
	"github.com/vidinfra/taxengine/internal/domain/calculation"
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/integration/taxprovider"
	"github.com/vidinfra/taxengine/internal/types"
)

// DocumentTaxService is the one synchronous entrypoint collaborators
// call per document. It orchestrates builder, engine, distributor and
// aggregator, substituting the external provider when the document's
// strategy asks for it.
type DocumentTaxService interface {
	ComputeDocumentTaxes(ctx context.Context, req *dto.ComputeDocumentRequest) (*dto.ComputeDocumentResponse, error)
	ComputeDocumentsBatch(ctx context.Context, req *dto.BatchComputeRequest) (*dto.BatchComputeResponse, error)
}

type documentTaxService struct {
	ServiceParams

	engine      *calculation.Engine
	distributor *calculation.Distributor
	aggregator  *calculation.Aggregator
	reconciler  *calculation.Reconciler
}

func NewDocumentTaxService(params ServiceParams) DocumentTaxService {
	return &documentTaxService{
		ServiceParams: params,
		engine:        calculation.NewEngine(),
		distributor:   calculation.NewDistributor(),
		aggregator:    calculation.NewAggregator(),
		reconciler:    calculation.NewReconciler(),
	}
}

func (s *documentTaxService) ComputeDocumentTaxes(ctx context.Context, req *dto.ComputeDocumentRequest) (*dto.ComputeDocumentResponse, error) {
	if err := req.Validate(); err != nil {
		s.Logger.Warnw("document tax computation validation failed",
			"error", err,
			"document_id", req.DocumentID,
		)
		return nil, err
	}

	registry, err := s.Registry.GetRegistry(ctx)
	if err != nil {
		return nil, err
	}

	documentID := req.DocumentID
	if documentID == "" {
		documentID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT)
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = types.ComputationStrategyDefault
	}

	cctx := calculation.ComputationContext{
		DefaultRoundingMethod: lo.FromPtrOr(req.RoundingMethod, s.Config.Rounding.DefaultMethod),
		RoundingMode:          s.Config.Rounding.Mode,
		PrecisionOverrides:    s.Config.Currency.PrecisionOverrides,
	}

	builder := calculation.NewLineBuilder(registry)

	// Fatal errors abort the whole document: partial results are never
	// surfaced as final.
	lines := make([]*calculation.TaxableLine, 0, len(req.Lines))
	results := make([]*calculation.Result, 0, len(req.Lines))
	for _, lineReq := range req.Lines {
		if lineReq.Currency == "" {
			lineReq.Currency = req.Currency
		}
		if lineReq.LineID == "" {
			lineReq.LineID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE)
		}

		line, err := builder.Build(lineReq.AsTaxableLine(), cctx)
		if err != nil {
			s.Logger.Warnw("failed to build taxable line",
				"error", err,
				"document_id", documentID,
				"line_id", lineReq.LineID,
			)
			return nil, err
		}

		result := s.engine.Compute(line)
		if err := s.distributor.Round(result, cctx.RoundingMode); err != nil {
			return nil, err
		}

		lines = append(lines, line)
		results = append(results, result)
	}

	if strategy == types.ComputationStrategyExternalProvider {
		if err := s.applyExternalProvider(ctx, documentID, req.Currency, lines, results); err != nil {
			return nil, err
		}
	}

	aggregates, err := s.aggregator.Aggregate(results, cctx.RoundingMode)
	if err != nil {
		return nil, err
	}

	doc := &calculation.DocumentResult{
		DocumentID:    documentID,
		ComputationID: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_COMPUTATION),
		Currency:      req.Currency,
		Strategy:      strategy,
		Lines:         results,
		Aggregates:    aggregates,
	}

	for _, result := range results {
		doc.TotalBase = doc.TotalBase.Add(result.RoundedBase)
		doc.TotalAmount = doc.TotalAmount.Add(result.TotalAmount)
		doc.Warnings = append(doc.Warnings, result.Warnings...)
	}
	doc.TotalTax = doc.TotalAmount.Sub(doc.TotalBase)

	s.Logger.Debugw("document taxes computed",
		"document_id", documentID,
		"computation_id", doc.ComputationID,
		"strategy", strategy,
		"lines", len(results),
		"total_tax", doc.TotalTax,
		"warnings", len(doc.Warnings),
	)

	return dto.NewComputeDocumentResponse(doc), nil
}

// applyExternalProvider routes the document to the external tax
// service and substitutes its authoritative amounts line by line. The
// reconciled results still flow through the aggregator so accounting
// postings see a uniform shape.
func (s *documentTaxService) applyExternalProvider(
	ctx context.Context,
	documentID string,
	currency string,
	lines []*calculation.TaxableLine,
	results []*calculation.Result,
) error {
	if s.ProviderClient == nil {
		return ierr.NewError("external tax provider is not configured").
			WithHint("Configure the external provider before selecting the external_provider strategy").
			Mark(ierr.ErrInvalidOperation)
	}

	providerReq := &taxprovider.ComputeRequest{
		DocumentID: documentID,
		Currency:   currency,
		Lines: lo.Map(lines, func(line *calculation.TaxableLine, _ int) taxprovider.RequestLine {
			return taxprovider.RequestLine{
				LineID:      line.LineID,
				GrossAmount: line.GrossAmount,
				Quantity:    line.Quantity,
				TaxCodes: lo.Map(line.Stack, func(e *calculation.StackEntry, _ int) string {
					return e.Definition.Code
				}),
			}
		}),
	}

	providerResp, err := s.ProviderClient.ComputeDocument(ctx, providerReq)
	if err != nil {
		s.Logger.Errorw("external tax provider call failed",
			"error", err,
			"document_id", documentID,
		)
		return err
	}

	externalByLine := make(map[string]*calculation.ExternalLineResult, len(providerResp.Lines))
	for _, extLine := range providerResp.Lines {
		externalByLine[extLine.LineID] = extLine
	}

	for _, result := range results {
		external, ok := externalByLine[result.LineID]
		if !ok {
			return ierr.NewError("provider response is missing a line").
				WithHintf("External provider returned no result for line '%s'", result.LineID).
				Mark(ierr.ErrInvalidOperation)
		}

		s.reconciler.Reconcile(result, external)
		for _, warning := range result.Warnings {
			s.Logger.Warnw("external tax total diverges from local computation",
				"document_id", documentID,
				"line_id", warning.LineID,
				"local_total", warning.LocalTotal,
				"external_total", warning.ExternalTotal,
			)
		}
	}

	return nil
}
