package ledger

import (
	"errors"
	"strings"

	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/dathao-chona/SocialMine-Z/internal/mining"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 userRejectedRequest, what wallet providers and external signers
// answer when the user declines to sign.
const codeUserRejected = 4001

// classifyError tags provider failures with a structured kind right where
// they happen, so upper layers match on errors.Is instead of error text.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeUserRejected {
		return lib.WrapError(mining.ErrSignerRejected, err)
	}

	if reason := revertReason(err); strings.Contains(strings.ToLower(reason), "already verified") {
		return lib.WrapError(mining.ErrAlreadyVerified, err)
	}

	return err
}

// revertReason extracts the revert string a node attaches to a rejected
// eth_estimateGas or eth_call, falling back to the error message.
func revertReason(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := dataErr.ErrorData().(string); ok {
			return reason
		}
	}
	return err.Error()
}
