// Package ledger adapts the Solana JSON-RPC API to the application's
// LedgerClient port.
package ledger

import (
	"context"
	"errors"

	"github.com/DanielPopoola/solpay-gateway/internal/config"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// transactionGetter is the subset of *rpc.Client the gateway needs.
type transactionGetter interface {
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

type SolanaClient struct {
	rpc        transactionGetter
	commitment rpc.CommitmentType
}

func NewSolanaClient(cfg config.LedgerConfig) *SolanaClient {
	return &SolanaClient{
		rpc:        rpc.New(cfg.RPCURL),
		commitment: rpc.CommitmentType(cfg.Commitment),
	}
}

func (c *SolanaClient) FetchTransaction(ctx context.Context, signature string) (*domain.LedgerTransaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, domain.NewInvalidSignatureError(signature, err)
	}

	maxVersion := uint64(0)
	out, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, domain.NewTransactionNotFoundError(signature)
		}
		return nil, &RPCError{
			Op:        "getTransaction",
			Signature: signature,
			Err:       err,
			retryable: isRetryableRPCError(err),
		}
	}

	if out == nil || out.Transaction == nil {
		return nil, domain.NewTransactionNotFoundError(signature)
	}
	if out.Meta == nil {
		return nil, &RPCError{
			Op:        "getTransaction",
			Signature: signature,
			Err:       errors.New("response carries no transaction meta"),
			retryable: true,
		}
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return nil, &RPCError{Op: "decodeTransaction", Signature: signature, Err: err}
	}

	return toLedgerTransaction(signature, out.Slot, out.BlockTime, tx.Message.AccountKeys, out.Meta), nil
}

// toLedgerTransaction flattens the RPC shape. Balances are indexed over the
// static account keys followed by the addresses loaded from lookup tables,
// writable first.
func toLedgerTransaction(
	signature string,
	slot uint64,
	blockTime *solana.UnixTimeSeconds,
	staticKeys solana.PublicKeySlice,
	meta *rpc.TransactionMeta,
) *domain.LedgerTransaction {
	keys := make([]string, 0, len(staticKeys)+len(meta.LoadedAddresses.Writable)+len(meta.LoadedAddresses.ReadOnly))
	for _, k := range staticKeys {
		keys = append(keys, k.String())
	}
	for _, k := range meta.LoadedAddresses.Writable {
		keys = append(keys, k.String())
	}
	for _, k := range meta.LoadedAddresses.ReadOnly {
		keys = append(keys, k.String())
	}

	tx := &domain.LedgerTransaction{
		Signature:      signature,
		Slot:           slot,
		ExecutionError: meta.Err,
		AccountKeys:    keys,
		PreBalances:    meta.PreBalances,
		PostBalances:   meta.PostBalances,
	}
	if blockTime != nil {
		t := blockTime.Time()
		tx.BlockTime = &t
	}
	return tx
}

// Malformed requests will fail the same way every time; everything else
// (node behind, rate limited by the provider, transport) is worth a retry.
func isRetryableRPCError(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case -32600, -32601, -32602:
			return false
		}
	}
	return true
}

// ParseAccount validates a base58 account address.
func ParseAccount(address string) (string, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return "", domain.NewInvalidAccountError(address, err)
	}
	return key.String(), nil
}
