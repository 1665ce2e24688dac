package service

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/vidinfra/taxengine/internal/api/dto"
	"github.com/vidinfra/taxengine/internal/domain/calculation"
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/integration/taxprovider"
	"github.com/vidinfra/taxengine/internal/testutil"
	"github.com/vidinfra/taxengine/internal/types"
)

type DocumentTaxServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     DocumentTaxService
	defsService TaxDefinitionService
	provider    *testutil.InMemoryTaxProvider
}

func TestDocumentTaxService(t *testing.T) {
	suite.Run(t, new(DocumentTaxServiceSuite))
}

func (s *DocumentTaxServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.provider = testutil.NewInMemoryTaxProvider()

	params := ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		TaxDefinitionRepo: s.GetTaxDefinitionRepo(),
		Registry:          NewRegistryManager(s.GetTaxDefinitionRepo()),
		ProviderClient:    s.provider,
	}
	s.service = NewDocumentTaxService(params)
	s.defsService = NewTaxDefinitionService(params)

	s.registerDefinition(dto.CreateTaxDefinitionRequest{
		Code:     "VAT15",
		Name:     "VAT 15%",
		Kind:     types.TaxKindPercent,
		Rate:     decimal.NewFromInt(15),
		Sequence: 1,
	})
	s.registerDefinition(dto.CreateTaxDefinitionRequest{
		Code:     "SURCHARGE5",
		Name:     "Surcharge 5%",
		Kind:     types.TaxKindPercentOfPreviousTotal,
		Rate:     decimal.NewFromInt(5),
		Sequence: 2,
	})
}

func (s *DocumentTaxServiceSuite) registerDefinition(req dto.CreateTaxDefinitionRequest) *dto.TaxDefinitionResponse {
	resp, err := s.defsService.CreateTaxDefinition(s.GetContext(), req)
	s.Require().NoError(err)
	return resp
}

func (s *DocumentTaxServiceSuite) line(lineID, qty, price string, codes ...string) dto.ComputeLineRequest {
	unitPrice := decimal.RequireFromString(price)
	return dto.ComputeLineRequest{
		LineID:    lineID,
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: &unitPrice,
		TaxCodes:  codes,
	}
}

func (s *DocumentTaxServiceSuite) TestComputeDocument() {
	resp, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		DocumentID: "doc-1",
		Currency:   "usd",
		Lines: []dto.ComputeLineRequest{
			s.line("line-1", "1", "100.00", "VAT15", "SURCHARGE5"),
		},
	})

	s.Require().NoError(err)
	s.Equal("doc-1", resp.DocumentID)
	s.Equal(types.ComputationStrategyDefault, resp.Strategy)
	s.Equal("$", resp.CurrencySymbol)
	s.True(strings.HasPrefix(resp.ComputationID, types.SHORT_ID_PREFIX_COMPUTATION))
	s.Require().Len(resp.Lines, 1)

	s.True(resp.TotalBase.Equal(decimal.RequireFromString("100.00")))
	s.True(resp.TotalTax.Equal(decimal.RequireFromString("20.75")))
	s.True(resp.TotalAmount.Equal(decimal.RequireFromString("120.75")))

	// one aggregate per distinct tax
	s.Require().Len(resp.Aggregates, 2)
	s.Equal("VAT15", resp.Aggregates[0].TaxCode)
	s.True(resp.Aggregates[0].TaxAmountSum.Equal(decimal.RequireFromString("15.00")))
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentGeneratesID() {
	resp, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		Currency: "usd",
		Lines: []dto.ComputeLineRequest{
			s.line("line-1", "1", "10.00", "VAT15"),
		},
	})

	s.Require().NoError(err)
	s.NotEmpty(resp.DocumentID)
	s.Contains(resp.DocumentID, types.UUID_PREFIX_DOCUMENT)
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentAssignsLineIDs() {
	unitPrice := decimal.RequireFromString("10.00")
	resp, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		Currency: "usd",
		Lines: []dto.ComputeLineRequest{
			{Quantity: decimal.NewFromInt(1), UnitPrice: &unitPrice, TaxCodes: []string{"VAT15"}},
			s.line("line-2", "1", "10.00", "VAT15"),
		},
	})

	s.Require().NoError(err)
	s.Require().Len(resp.Lines, 2)

	// lines arriving without an ID get one, caller-supplied IDs survive
	s.Contains(resp.Lines[0].LineID, types.UUID_PREFIX_LINE)
	s.Equal("line-2", resp.Lines[1].LineID)
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentRequiresCurrency() {
	_, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		Lines: []dto.ComputeLineRequest{
			s.line("line-1", "1", "10.00", "VAT15"),
		},
	})

	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentRejectsMixedCurrencies() {
	line := s.line("line-1", "1", "10.00", "VAT15")
	line.Currency = "eur"

	_, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		Currency: "usd",
		Lines:    []dto.ComputeLineRequest{line},
	})

	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentFailsOnMissingPrice() {
	_, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		Currency: "usd",
		Lines: []dto.ComputeLineRequest{
			s.line("line-1", "1", "10.00", "VAT15"),
			{LineID: "line-2", Quantity: decimal.NewFromInt(2), TaxCodes: []string{"VAT15"}},
		},
	})

	// one bad line aborts the whole document
	s.Require().Error(err)
	s.True(ierr.IsMissingPrice(err))
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentGlobalRounding() {
	s.registerDefinition(dto.CreateTaxDefinitionRequest{
		Code:           "GLOBAL10",
		Name:           "Global 10%",
		Kind:           types.TaxKindPercent,
		Rate:           decimal.NewFromInt(10),
		Sequence:       1,
		RoundingMethod: lo.ToPtr(types.RoundingMethodGlobal),
	})

	resp, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		DocumentID: "doc-global",
		Currency:   "usd",
		Lines: []dto.ComputeLineRequest{
			s.line("line-1", "1", "0.33", "GLOBAL10"),
			s.line("line-2", "1", "0.33", "GLOBAL10"),
			s.line("line-3", "1", "0.33", "GLOBAL10"),
		},
	})

	s.Require().NoError(err)

	// Per-line rounding of 0.033 would drop all three cents; the
	// document-level sum 0.099 rounds to 0.10.
	s.Require().Len(resp.Aggregates, 1)
	s.True(resp.Aggregates[0].TaxAmountSum.Equal(decimal.RequireFromString("0.10")),
		"got %s", resp.Aggregates[0].TaxAmountSum.String())

	lineSum := decimal.Zero
	for _, line := range resp.Lines {
		s.False(line.PendingDocumentRounding)
		lineSum = lineSum.Add(line.TaxAmounts[0].RoundedAmount)
	}
	s.True(lineSum.Equal(decimal.RequireFromString("0.10")))
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentExternalStrategy() {
	s.provider.Responses["doc-ext"] = &taxprovider.ComputeResponse{
		DocumentID: "doc-ext",
		Lines: []*calculation.ExternalLineResult{
			{
				LineID: "line-1",
				TaxAmounts: []*calculation.ExternalTaxAmount{
					{TaxCode: "VAT15", Amount: decimal.RequireFromString("15.02")},
				},
				Total: decimal.RequireFromString("115.02"),
			},
		},
	}

	resp, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		DocumentID: "doc-ext",
		Currency:   "usd",
		Strategy:   types.ComputationStrategyExternalProvider,
		Lines: []dto.ComputeLineRequest{
			s.line("line-1", "1", "100.00", "VAT15"),
		},
	})

	s.Require().NoError(err)
	s.Equal(types.ComputationStrategyExternalProvider, resp.Strategy)

	// the provider's amounts are authoritative
	s.Require().Len(resp.Lines, 1)
	s.True(resp.Lines[0].TaxAmounts[0].RoundedAmount.Equal(decimal.RequireFromString("15.02")))
	s.True(resp.TotalAmount.Equal(decimal.RequireFromString("115.02")))

	// divergence beyond one minor unit surfaces as a warning, not an error
	s.Require().Len(resp.Warnings, 1)
	s.Equal("line-1", resp.Warnings[0].LineID)

	s.Require().Len(s.provider.Requests, 1)
	s.Equal("doc-ext", s.provider.Requests[0].DocumentID)
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentExternalMissingLine() {
	s.provider.Responses["doc-ext"] = &taxprovider.ComputeResponse{
		DocumentID: "doc-ext",
	}

	_, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		DocumentID: "doc-ext",
		Currency:   "usd",
		Strategy:   types.ComputationStrategyExternalProvider,
		Lines: []dto.ComputeLineRequest{
			s.line("line-1", "1", "100.00", "VAT15"),
		},
	})

	s.Require().Error(err)
	s.True(errors.Is(err, ierr.ErrInvalidOperation))
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentRoundingMethodOverride() {
	resp, err := s.service.ComputeDocumentTaxes(s.GetContext(), &dto.ComputeDocumentRequest{
		DocumentID:     "doc-override",
		Currency:       "usd",
		RoundingMethod: lo.ToPtr(types.RoundingMethodGlobal),
		Lines: []dto.ComputeLineRequest{
			s.line("line-1", "1", "0.03", "VAT15"),
			s.line("line-2", "1", "0.03", "VAT15"),
		},
	})

	s.Require().NoError(err)

	// Per-line rounding would drop both 0.0045 amounts to zero; the
	// document override sums first, so 0.009 rounds once to 0.01.
	s.Require().Len(resp.Aggregates, 1)
	s.True(resp.Aggregates[0].TaxAmountSum.Equal(decimal.RequireFromString("0.01")))
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentsBatch() {
	resp, err := s.service.ComputeDocumentsBatch(s.GetContext(), &dto.BatchComputeRequest{
		Documents: []*dto.ComputeDocumentRequest{
			{
				DocumentID: "doc-ok",
				Currency:   "usd",
				Lines:      []dto.ComputeLineRequest{s.line("line-1", "1", "100.00", "VAT15")},
			},
			{
				DocumentID: "doc-bad",
				Currency:   "usd",
				Lines: []dto.ComputeLineRequest{
					{LineID: "line-1", Quantity: decimal.NewFromInt(1), TaxCodes: []string{"VAT15"}},
				},
			},
		},
	})

	s.Require().NoError(err)
	s.Require().Len(resp.Items, 2)

	// request order is preserved and documents fail independently
	s.Equal("doc-ok", resp.Items[0].DocumentID)
	s.Require().NotNil(resp.Items[0].Result)
	s.Empty(resp.Items[0].Error)

	s.Equal("doc-bad", resp.Items[1].DocumentID)
	s.Nil(resp.Items[1].Result)
	s.NotEmpty(resp.Items[1].Error)
}

func (s *DocumentTaxServiceSuite) TestComputeDocumentsBatchEmpty() {
	_, err := s.service.ComputeDocumentsBatch(s.GetContext(), &dto.BatchComputeRequest{})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}
