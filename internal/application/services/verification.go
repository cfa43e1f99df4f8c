package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/application"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

// VerificationService decides whether a claimed payment is real, recent,
// sufficient and unspent. Steps run in a fixed order and the first failure
// short-circuits the rest:
//
//	reserve -> fetch -> execution -> age -> payer -> rate limit -> recipient -> amount -> commit
//
// The signature is reserved up front and committed only on the valid path;
// every other path releases it.
type VerificationService struct {
	ledger    application.LedgerClient
	replay    application.ReplayStore
	limiter   application.RateLimitStore
	validator *PaymentValidator
	recorder  application.VerificationRecorder
	logger    *slog.Logger
	now       func() time.Time
}

type ServiceOption func(*VerificationService)

// WithRecorder persists every decision. Recording is best effort.
func WithRecorder(recorder application.VerificationRecorder) ServiceOption {
	return func(s *VerificationService) { s.recorder = recorder }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *VerificationService) { s.now = now }
}

func NewVerificationService(
	ledger application.LedgerClient,
	replay application.ReplayStore,
	limiter application.RateLimitStore,
	validator *PaymentValidator,
	logger *slog.Logger,
	opts ...ServiceOption,
) *VerificationService {
	s := &VerificationService{
		ledger:    ledger,
		replay:    replay,
		limiter:   limiter,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyPayment returns an error only for malformed input. Every other
// outcome, including ledger and store failures, is reported in the result.
func (s *VerificationService) VerifyPayment(ctx context.Context, signature string, requiredAmount decimal.Decimal) (*domain.VerificationResult, error) {
	req, err := domain.NewVerificationRequest(signature, requiredAmount)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	required, err := domain.ToLamports(req.RequiredAmount)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	result := &domain.VerificationResult{
		Signature:        req.Signature,
		RequiredLamports: required,
	}
	s.verify(ctx, result)
	result.CheckedAt = s.now()

	s.report(ctx, result)
	return result, nil
}

func (s *VerificationService) verify(ctx context.Context, result *domain.VerificationResult) {
	signature := result.Signature

	reserved, err := s.replay.Reserve(ctx, signature)
	if err != nil {
		fail(result, err)
		return
	}
	if !reserved {
		reject(result, domain.NewRejection(domain.ReasonAlreadyUsed, ""))
		return
	}

	held := true
	defer func() {
		if !held {
			return
		}
		if err := s.replay.Release(context.WithoutCancel(ctx), signature); err != nil {
			s.logger.Error("failed to release signature reservation",
				"signature", signature,
				"error", err,
			)
		}
	}()

	tx, err := s.ledger.FetchTransaction(ctx, signature)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) || errors.Is(err, domain.ErrInvalidSignature) {
			reject(result, domain.NewRejection(domain.ReasonNotFoundOnLedger, err.Error()))
			return
		}
		fail(result, err)
		return
	}
	result.Timestamp = tx.BlockTime

	if err := s.validator.CheckTransaction(tx, s.now()); err != nil {
		reject(result, err)
		return
	}

	payer, ok := tx.FeePayer()
	if !ok {
		fail(result, errors.New("transaction lists no accounts"))
		return
	}
	result.Payer = payer

	decision, err := s.limiter.Hit(ctx, payer)
	if err != nil {
		fail(result, err)
		return
	}
	if !decision.Allowed {
		reject(result, domain.NewRejection(domain.ReasonRateLimitExceeded,
			"window resets at "+decision.ResetAt.UTC().Format(time.RFC3339)))
		return
	}

	received, err := s.validator.CheckTransfer(tx, result.RequiredLamports)
	result.AmountLamports = received
	if err != nil {
		reject(result, err)
		return
	}

	if err := s.replay.Commit(ctx, signature); err != nil {
		if errors.Is(err, domain.ErrReservationLost) {
			// Someone else may hold or have spent the signature now.
			held = false
			s.logger.Warn("signature reservation lost before commit", "signature", signature)
			reject(result, domain.NewRejection(domain.ReasonAlreadyUsed, err.Error()))
			return
		}
		fail(result, err)
		return
	}
	held = false
	result.Valid = true
}

// Reset clears replay and rate-limit state.
func (s *VerificationService) Reset(ctx context.Context) error {
	return errors.Join(s.replay.Reset(ctx), s.limiter.Reset(ctx))
}

func (s *VerificationService) report(ctx context.Context, result *domain.VerificationResult) {
	switch {
	case result.Valid:
		s.logger.Info("payment verified",
			"signature", result.Signature,
			"payer", result.Payer,
			"amount_lamports", result.AmountLamports,
			"required_lamports", result.RequiredLamports,
		)
	case result.Reason == domain.ReasonInternalError:
		s.logger.Error("payment verification failed",
			"signature", result.Signature,
			"reason", result.Reason,
			"error", result.Detail,
		)
	default:
		s.logger.Info("payment rejected",
			"signature", result.Signature,
			"reason", result.Reason,
			"detail", result.Detail,
			"payer", result.Payer,
		)
	}

	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), result); err != nil {
		s.logger.Warn("failed to record verification",
			"signature", result.Signature,
			"error", err,
		)
	}
}

func reject(result *domain.VerificationResult, err error) {
	var rejection *domain.RejectionError
	if !errors.As(err, &rejection) {
		fail(result, err)
		return
	}
	result.Valid = false
	result.Reason = rejection.Reason
	result.Detail = rejection.Detail
}

func fail(result *domain.VerificationResult, err error) {
	result.Valid = false
	result.Reason = domain.ReasonInternalError
	result.Detail = err.Error()
}
