package mining

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/dathao-chona/SocialMine-Z/internal/fhe"
	"github.com/dathao-chona/SocialMine-Z/internal/interfaces"
	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/atomic"
)

// SubmitParams is the form input of a submission. Value arrives as raw
// text; non-numeric input is coerced to zero (best-effort policy, see
// parseValue).
type SubmitParams struct {
	Name        string `json:"name" binding:"required"`
	Value       string `json:"value" binding:"required"`
	Description string `json:"description"`
}

// Controller owns the submission and decryption workflows, the
// single-flight guards around them and the notification lifecycle. All
// workflow errors terminate here as notifications; the error return values
// exist for the API layer to pick a status code.
type Controller struct {
	// config
	contractAddr   common.Address
	recordCategory string

	// deps
	wallet   AccountProvider
	ledger   Ledger
	bridge   EncryptionBridge
	cache    *Cache
	notifier *Notifier
	log      interfaces.ILogger

	// guards
	submitGuard atomic.Bool
	decryptMu   sync.Mutex
	decrypting  map[string]struct{}
}

func NewController(contractAddr common.Address, recordCategory string, wallet AccountProvider, ledger Ledger, bridge EncryptionBridge, cache *Cache, notifier *Notifier, log interfaces.ILogger) *Controller {
	return &Controller{
		contractAddr:   contractAddr,
		recordCategory: recordCategory,
		wallet:         wallet,
		ledger:         ledger,
		bridge:         bridge,
		cache:          cache,
		notifier:       notifier,
		log:            log,
	}
}

// Submit encrypts the value, submits it with its validity proof and awaits
// inclusion. Returns the id of the new record. At most one submission is
// in flight at a time; re-entry fails with ErrBusy before any side effect.
func (c *Controller) Submit(ctx context.Context, params SubmitParams) (string, error) {
	state := c.wallet.ConnectionState()
	if !state.Connected {
		c.notifier.Error("Please connect wallet first")
		return "", ErrNotConnected
	}

	if !c.submitGuard.CAS(false, true) {
		return "", ErrBusy
	}
	defer c.submitGuard.Store(false)

	c.notifier.Pending("Creating encrypted social data...")

	value := parseValue(params.Value)

	encrypted, err := c.bridge.Encrypt(ctx, c.contractAddr, state.Address, value)
	if err != nil {
		return "", c.failSubmission(err)
	}

	recordID := lib.NewRecordID(c.recordCategory, time.Now())

	tx, err := c.ledger.CreateRecord(ctx, CreateRecordParams{
		ID:          recordID,
		Name:        params.Name,
		Ciphertext:  encrypted.Handle,
		Proof:       encrypted.Proof,
		Description: params.Description,
	}, c.wallet.PrivateKey())
	if err != nil {
		return "", c.failSubmission(err)
	}

	c.notifier.Pending("Waiting for transaction confirmation...")

	if err := c.ledger.WaitInclusion(ctx, tx); err != nil {
		return "", c.failSubmission(err)
	}

	c.notifier.Success("Social data created successfully!")

	if _, err := c.cache.Refresh(ctx); err != nil {
		// the record is on chain, a later refresh picks it up
		c.log.Warnf("post-submission refresh failed: %s", err)
	}

	return recordID, nil
}

func (c *Controller) failSubmission(cause error) error {
	switch {
	case errors.Is(cause, ErrSignerRejected):
		c.notifier.Error("Transaction rejected by user")
		return cause
	case errors.Is(cause, fhe.ErrBridgeUnavailable):
		c.notifier.Error("Encryption service unavailable")
		return cause
	default:
		c.notifier.Error("Submission failed: " + cause.Error())
		return lib.WrapError(ErrSubmissionFailed, cause)
	}
}

// Decrypt discloses the plaintext of a record. Idempotent: an already
// verified record resolves from the stored on-chain value without running
// the decryption protocol or prompting the signer again. Decryptions of
// distinct records may run concurrently; per record, re-entry fails with
// ErrBusy.
func (c *Controller) Decrypt(ctx context.Context, recordID string) (*uint64, error) {
	state := c.wallet.ConnectionState()
	if !state.Connected {
		c.notifier.Error("Please connect wallet first")
		return nil, ErrNotConnected
	}

	if !c.acquireDecrypt(recordID) {
		return nil, ErrBusy
	}
	defer c.releaseDecrypt(recordID)

	record, err := c.ledger.GetRecord(ctx, recordID)
	if err != nil {
		c.notifier.Error("Decryption failed: " + err.Error())
		return nil, lib.WrapError(ErrDecryptionFailed, err)
	}
	if record.IsVerified {
		value := record.DecryptedValue
		c.notifier.Success("Data already verified on-chain")
		return &value, nil
	}

	c.notifier.Pending("Requesting decryption...")

	handle, err := c.ledger.GetCiphertextHandle(ctx, recordID)
	if err != nil {
		return c.resolveDecryptFailure(ctx, recordID, err)
	}

	submit := func(ctx context.Context, clearValues []byte, proof []byte) error {
		tx, err := c.ledger.SubmitDecryptionProof(ctx, recordID, clearValues, proof, c.wallet.PrivateKey())
		if err != nil {
			return err
		}
		c.notifier.Pending("Verifying decryption on-chain...")
		return c.ledger.WaitInclusion(ctx, tx)
	}

	result, err := c.bridge.VerifyDecryption(ctx, []common.Hash{handle}, c.contractAddr, submit)
	if err != nil {
		return c.resolveDecryptFailure(ctx, recordID, err)
	}

	value, ok := result.ClearValues[handle]
	if !ok {
		err := errors.New("no clear value for handle " + handle.Hex())
		c.notifier.Error("Decryption failed: " + err.Error())
		return nil, lib.WrapError(ErrDecryptionFailed, err)
	}

	if _, err := c.cache.Refresh(ctx); err != nil {
		c.log.Warnf("post-decryption refresh failed: %s", err)
	}

	c.notifier.Success("Data decrypted and verified successfully!")

	return &value, nil
}

// resolveDecryptFailure re-checks the record before reporting an error:
// when another actor's proof landed first the record is verified by now and
// the workflow resolves as already-verified success instead of propagating
// the failure.
func (c *Controller) resolveDecryptFailure(ctx context.Context, recordID string, cause error) (*uint64, error) {
	if errors.Is(cause, ErrAlreadyVerified) {
		return c.resolveAlreadyVerified(ctx, recordID, cause)
	}
	if record, err := c.ledger.GetRecord(ctx, recordID); err == nil && record.IsVerified {
		return c.resolveAlreadyVerified(ctx, recordID, cause)
	}

	if errors.Is(cause, ErrSignerRejected) {
		c.notifier.Error("Transaction rejected by user")
		return nil, cause
	}
	if errors.Is(cause, fhe.ErrBridgeUnavailable) {
		c.notifier.Error("Encryption service unavailable")
		return nil, cause
	}

	c.notifier.Error("Decryption failed: " + cause.Error())
	return nil, lib.WrapError(ErrDecryptionFailed, cause)
}

func (c *Controller) resolveAlreadyVerified(ctx context.Context, recordID string, cause error) (*uint64, error) {
	c.log.Infof("record %s was verified mid-flight: %s", recordID, cause)
	c.notifier.Success("Data is already verified on-chain")

	if _, err := c.cache.Refresh(ctx); err != nil {
		c.log.Warnf("refresh after verification race failed: %s", err)
	}

	record, err := c.ledger.GetRecord(ctx, recordID)
	if err != nil || !record.IsVerified {
		// verified according to the revert reason but not readable yet
		return nil, nil
	}
	value := record.DecryptedValue
	return &value, nil
}

// Refresh rebuilds the record snapshot. Coalesced by the cache, so a
// caller may share an in-flight refresh.
func (c *Controller) Refresh(ctx context.Context) (*Snapshot, error) {
	snapshot, err := c.cache.Refresh(ctx)
	if err != nil {
		c.notifier.Error("Failed to load data")
		return nil, err
	}
	return snapshot, nil
}

// CheckAvailability probes the contract's availability flag.
func (c *Controller) CheckAvailability(ctx context.Context) (bool, error) {
	available, err := c.ledger.IsAvailable(ctx)
	if err != nil {
		c.notifier.Error("Availability check failed")
		return false, lib.WrapError(ErrAvailability, err)
	}

	if available {
		c.notifier.Success("Contract is available and ready!")
	}
	return available, nil
}

func (c *Controller) Snapshot() *Snapshot {
	return c.cache.Snapshot()
}

func (c *Controller) Notification() Notification {
	return c.notifier.Current()
}

func (c *Controller) NotificationHistory() []Notification {
	return c.notifier.History()
}

func (c *Controller) IsConnected() bool {
	return c.wallet.ConnectionState().Connected
}

// busy flags for disabling controls

func (c *Controller) IsSubmitting() bool {
	return c.submitGuard.Load()
}

func (c *Controller) IsDecrypting(recordID string) bool {
	c.decryptMu.Lock()
	defer c.decryptMu.Unlock()
	_, busy := c.decrypting[recordID]
	return busy
}

func (c *Controller) IsAnyDecrypting() bool {
	c.decryptMu.Lock()
	defer c.decryptMu.Unlock()
	return len(c.decrypting) > 0
}

func (c *Controller) IsRefreshing() bool {
	return c.cache.IsRefreshing()
}

func (c *Controller) acquireDecrypt(recordID string) bool {
	c.decryptMu.Lock()
	defer c.decryptMu.Unlock()
	if c.decrypting == nil {
		c.decrypting = make(map[string]struct{})
	}
	if _, busy := c.decrypting[recordID]; busy {
		return false
	}
	c.decrypting[recordID] = struct{}{}
	return true
}

func (c *Controller) releaseDecrypt(recordID string) {
	c.decryptMu.Lock()
	defer c.decryptMu.Unlock()
	delete(c.decrypting, recordID)
}

// parseValue keeps the best-effort policy of the submission form: anything
// that does not parse as a non-negative integer becomes zero rather than a
// validation error.
func parseValue(raw string) uint64 {
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return value
}
