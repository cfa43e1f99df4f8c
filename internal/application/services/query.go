package services

import (
	"context"
	"errors"

	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
)

const maxHistoryLimit = 100

type QueryService struct {
	finder application.VerificationFinder
}

func NewQueryService(finder application.VerificationFinder) *QueryService {
	return &QueryService{
		finder: finder,
	}
}

// FindAccepted returns the proof record for a signature that was accepted.
func (s *QueryService) FindAccepted(ctx context.Context, signature string) (*domain.VerificationResult, error) {
	if signature == "" {
		return nil, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("signature"))
	}

	result, err := s.finder.FindAccepted(ctx, signature)
	if err != nil {
		if errors.Is(err, domain.ErrVerificationNotFound) {
			return nil, application.NewNotFoundError(err)
		}
		return nil, application.NewInternalError(err)
	}
	return result, nil
}

// History lists every recorded decision for a signature, newest first.
func (s *QueryService) History(ctx context.Context, signature string, limit int) ([]*domain.VerificationResult, error) {
	if signature == "" {
		return nil, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("signature"))
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	results, err := s.finder.FindBySignature(ctx, signature, limit)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	return results, nil
}
