package ledger

import (
	"errors"
	"fmt"
)

// RPCError wraps a failure talking to the ledger RPC provider.
type RPCError struct {
	Op        string
	Signature string
	Err       error
	retryable bool
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("ledger rpc %s %s: %v", e.Op, e.Signature, e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

func (e *RPCError) IsRetryable() bool {
	return e.retryable
}

func IsRPCError(err error) (*RPCError, bool) {
	var rpcErr *RPCError
	ok := errors.As(err, &rpcErr)
	return rpcErr, ok
}
