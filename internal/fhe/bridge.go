package fhe

import (
	"context"
	"errors"
	"fmt"

	"github.com/dathao-chona/SocialMine-Z/internal/interfaces"
	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/dathao-chona/SocialMine-Z/internal/repositories/relayer"
	"github.com/ethereum/go-ethereum/common"
)

// ErrBridgeUnavailable means the encryption bridge is not initialized or
// its backing relayer cannot be reached. An upstream precondition failure,
// distinct from transaction errors.
var ErrBridgeUnavailable = errors.New("encryption bridge unavailable")

// EncryptedInput is a ciphertext handle paired with its validity proof.
// The two are only meaningful together and are always submitted together.
type EncryptedInput struct {
	Handle common.Hash
	Proof  []byte
}

// DecryptionResult holds disclosed plaintexts keyed by ciphertext handle.
type DecryptionResult struct {
	ClearValues map[common.Hash]uint64
}

// SubmitProofFn puts clear values and their decryption proof on chain and
// returns once the transaction is included. Supplied by the workflow
// controller; the bridge awaits its settlement before reporting success.
type SubmitProofFn func(ctx context.Context, clearValues []byte, proof []byte) error

type RelayerClient interface {
	CreateInputProof(ctx context.Context, contract, user common.Address, value uint64) (*relayer.EncryptedInputResult, error)
	PublicDecrypt(ctx context.Context, handles []common.Hash) (*relayer.DecryptResult, error)
}

// RelayerBridge implements the encryption bridge on top of the FHE relayer.
type RelayerBridge struct {
	client RelayerClient
	log    interfaces.ILogger
}

func NewRelayerBridge(client RelayerClient, log interfaces.ILogger) *RelayerBridge {
	return &RelayerBridge{
		client: client,
		log:    log,
	}
}

func (b *RelayerBridge) Encrypt(ctx context.Context, contract, user common.Address, value uint64) (*EncryptedInput, error) {
	if b.client == nil {
		return nil, ErrBridgeUnavailable
	}

	result, err := b.client.CreateInputProof(ctx, contract, user, value)
	if err != nil {
		if errors.Is(err, relayer.ErrRelayerUnavailable) {
			return nil, lib.WrapError(ErrBridgeUnavailable, err)
		}
		return nil, err
	}

	return &EncryptedInput{Handle: result.Handle, Proof: result.Proof}, nil
}

// VerifyDecryption obtains clear values for the handles from the relayer,
// hands the ABI-encoded values and proof to the submit callback and waits
// for it to settle. Only then is the result returned, so a caller never
// sees plaintext that the ledger has not checked.
func (b *RelayerBridge) VerifyDecryption(ctx context.Context, handles []common.Hash, contract common.Address, submit SubmitProofFn) (*DecryptionResult, error) {
	if b.client == nil {
		return nil, ErrBridgeUnavailable
	}

	result, err := b.client.PublicDecrypt(ctx, handles)
	if err != nil {
		if errors.Is(err, relayer.ErrRelayerUnavailable) {
			return nil, lib.WrapError(ErrBridgeUnavailable, err)
		}
		return nil, err
	}

	for _, handle := range handles {
		if _, ok := result.ClearValues[handle]; !ok {
			return nil, fmt.Errorf("relayer returned no clear value for handle %s", handle)
		}
	}

	if err := submit(ctx, result.ABIEncoded, result.Proof); err != nil {
		return nil, err
	}

	b.log.Debugf("decryption verified for %d handle(s), contract %s", len(handles), contract)

	return &DecryptionResult{ClearValues: result.ClearValues}, nil
}
