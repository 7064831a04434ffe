package fhe

import (
	"context"
	"errors"
	"testing"

	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/dathao-chona/SocialMine-Z/internal/repositories/relayer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type relayerClientMock struct {
	createInputProof func(ctx context.Context, contract, user common.Address, value uint64) (*relayer.EncryptedInputResult, error)
	publicDecrypt    func(ctx context.Context, handles []common.Hash) (*relayer.DecryptResult, error)
}

func (m *relayerClientMock) CreateInputProof(ctx context.Context, contract, user common.Address, value uint64) (*relayer.EncryptedInputResult, error) {
	return m.createInputProof(ctx, contract, user, value)
}

func (m *relayerClientMock) PublicDecrypt(ctx context.Context, handles []common.Hash) (*relayer.DecryptResult, error) {
	return m.publicDecrypt(ctx, handles)
}

var (
	testContract = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testUser     = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestEncryptReturnsHandleAndProofTogether(t *testing.T) {
	handle := common.HexToHash("0xdead")

	client := &relayerClientMock{
		createInputProof: func(ctx context.Context, contract, user common.Address, value uint64) (*relayer.EncryptedInputResult, error) {
			require.Equal(t, testContract, contract)
			require.Equal(t, testUser, user)
			require.Equal(t, uint64(42), value)
			return &relayer.EncryptedInputResult{Handle: handle, Proof: []byte{1}}, nil
		},
	}
	bridge := NewRelayerBridge(client, &lib.LoggerMock{})

	input, err := bridge.Encrypt(context.Background(), testContract, testUser, 42)

	require.NoError(t, err)
	require.Equal(t, handle, input.Handle)
	require.Equal(t, []byte{1}, input.Proof)
}

func TestEncryptWithoutClientIsBridgeUnavailable(t *testing.T) {
	bridge := NewRelayerBridge(nil, &lib.LoggerMock{})

	_, err := bridge.Encrypt(context.Background(), testContract, testUser, 42)

	require.ErrorIs(t, err, ErrBridgeUnavailable)
}

func TestEncryptMapsUnreachableRelayer(t *testing.T) {
	client := &relayerClientMock{
		createInputProof: func(ctx context.Context, contract, user common.Address, value uint64) (*relayer.EncryptedInputResult, error) {
			return nil, lib.WrapError(relayer.ErrRelayerUnavailable, errors.New("connection refused"))
		},
	}
	bridge := NewRelayerBridge(client, &lib.LoggerMock{})

	_, err := bridge.Encrypt(context.Background(), testContract, testUser, 42)

	require.ErrorIs(t, err, ErrBridgeUnavailable)
}

func TestVerifyDecryptionAwaitsSubmitSettlement(t *testing.T) {
	handle := common.HexToHash("0xbeef")
	submitted := false

	client := &relayerClientMock{
		publicDecrypt: func(ctx context.Context, handles []common.Hash) (*relayer.DecryptResult, error) {
			return &relayer.DecryptResult{
				ClearValues: map[common.Hash]uint64{handle: 17},
				ABIEncoded:  []byte("clear"),
				Proof:       []byte("proof"),
			}, nil
		},
	}
	bridge := NewRelayerBridge(client, &lib.LoggerMock{})

	result, err := bridge.VerifyDecryption(context.Background(), []common.Hash{handle}, testContract,
		func(ctx context.Context, clearValues, proof []byte) error {
			require.Equal(t, []byte("clear"), clearValues)
			require.Equal(t, []byte("proof"), proof)
			submitted = true
			return nil
		})

	require.NoError(t, err)
	require.True(t, submitted)
	require.Equal(t, uint64(17), result.ClearValues[handle])
}

func TestVerifyDecryptionPropagatesSubmitFailure(t *testing.T) {
	handle := common.HexToHash("0xbeef")

	client := &relayerClientMock{
		publicDecrypt: func(ctx context.Context, handles []common.Hash) (*relayer.DecryptResult, error) {
			return &relayer.DecryptResult{ClearValues: map[common.Hash]uint64{handle: 17}}, nil
		},
	}
	bridge := NewRelayerBridge(client, &lib.LoggerMock{})

	submitErr := errors.New("transaction reverted")
	_, err := bridge.VerifyDecryption(context.Background(), []common.Hash{handle}, testContract,
		func(ctx context.Context, clearValues, proof []byte) error {
			return submitErr
		})

	require.ErrorIs(t, err, submitErr)
}

func TestVerifyDecryptionRejectsMissingHandle(t *testing.T) {
	requested := common.HexToHash("0xbeef")

	client := &relayerClientMock{
		publicDecrypt: func(ctx context.Context, handles []common.Hash) (*relayer.DecryptResult, error) {
			return &relayer.DecryptResult{ClearValues: map[common.Hash]uint64{}}, nil
		},
	}
	bridge := NewRelayerBridge(client, &lib.LoggerMock{})

	called := false
	_, err := bridge.VerifyDecryption(context.Background(), []common.Hash{requested}, testContract,
		func(ctx context.Context, clearValues, proof []byte) error {
			called = true
			return nil
		})

	require.Error(t, err)
	require.False(t, called, "nothing must reach the chain without a clear value for every handle")
}
