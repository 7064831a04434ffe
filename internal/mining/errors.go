package mining

import "errors"

// Workflow error taxonomy. The ledger gateway attaches ErrSignerRejected
// and ErrAlreadyVerified at the point of failure; the controller maps
// everything to one of these kinds before it reaches a caller, so no layer
// above ever inspects error text.
var (
	// ErrNotConnected means no signing identity is configured; the action is
	// refused before any side effect.
	ErrNotConnected = errors.New("no connected wallet")

	// ErrSignerRejected means the signer declined to sign the transaction.
	// A normal terminal outcome, not a fault.
	ErrSignerRejected = errors.New("transaction rejected by signer")

	// ErrAlreadyVerified means a decryption proof for the record has already
	// been accepted on-chain. Redirected to the success path.
	ErrAlreadyVerified = errors.New("record already verified")

	ErrSubmissionFailed = errors.New("submission failed")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrRefreshFailed    = errors.New("record refresh failed")
	ErrAvailability     = errors.New("availability check failed")

	// ErrBusy means another operation of the same class is in flight and the
	// per-class guard rejected re-entry.
	ErrBusy = errors.New("operation already in progress")
)
