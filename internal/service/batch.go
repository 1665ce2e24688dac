package service

import (
	"context"

	"github.com/sourcegraph/conc/iter"

	"github.com/vidinfra/taxengine/internal/api/dto"
	ierr "github.com/vidinfra/taxengine/internal/errors"
)

// ComputeDocumentsBatch computes independent documents in parallel.
// Documents carry no ordering guarantee between each other, so they
// fan out across goroutines; within one document line order is
// preserved by ComputeDocumentTaxes. Output order matches input order
// and each document fails independently.
func (s *documentTaxService) ComputeDocumentsBatch(ctx context.Context, req *dto.BatchComputeRequest) (*dto.BatchComputeResponse, error) {
	if req == nil || len(req.Documents) == 0 {
		return nil, ierr.NewError("batch is empty").
			WithHint("A batch request must contain at least one document").
			Mark(ierr.ErrValidation)
	}

	items := iter.Map(req.Documents, func(docReq **dto.ComputeDocumentRequest) *dto.BatchComputeItem {
		item := &dto.BatchComputeItem{DocumentID: (*docReq).DocumentID}

		result, err := s.ComputeDocumentTaxes(ctx, *docReq)
		if err != nil {
			item.Error = err.Error()
			return item
		}

		item.DocumentID = result.DocumentID
		item.Result = result
		return item
	})

	return &dto.BatchComputeResponse{Items: items}, nil
}
