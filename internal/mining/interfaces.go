package mining

import (
	"context"

	"github.com/dathao-chona/SocialMine-Z/internal/fhe"
	"github.com/dathao-chona/SocialMine-Z/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// AccountProvider supplies the signing identity. A provider may report
// not-connected, in which case every side-effecting workflow is refused
// up front.
type AccountProvider interface {
	ConnectionState() wallet.ConnectionState
	PrivateKey() string
}

// LedgerReader is the read-only accessor to the on-chain record store.
type LedgerReader interface {
	GetRecordIDs(ctx context.Context) ([]string, error)
	GetRecord(ctx context.Context, recordID string) (*Record, error)
	GetCiphertextHandle(ctx context.Context, recordID string) (common.Hash, error)
	IsAvailable(ctx context.Context) (bool, error)
}

// LedgerWriter is the signed accessor. Create/Submit return after the
// transaction is sent; WaitInclusion blocks until it is mined.
type LedgerWriter interface {
	CreateRecord(ctx context.Context, params CreateRecordParams, privKey string) (*types.Transaction, error)
	SubmitDecryptionProof(ctx context.Context, recordID string, clearValues []byte, proof []byte, privKey string) (*types.Transaction, error)
	WaitInclusion(ctx context.Context, tx *types.Transaction) error
}

// Ledger is the full gateway surface the controller depends on.
type Ledger interface {
	LedgerReader
	LedgerWriter
}

// EncryptionBridge wraps the homomorphic-encryption client. The bridge
// owns the cryptographic protocol; the controller only supplies the
// callback that puts the clear values and proof on chain.
type EncryptionBridge interface {
	Encrypt(ctx context.Context, contract, user common.Address, value uint64) (*fhe.EncryptedInput, error)
	VerifyDecryption(ctx context.Context, handles []common.Hash, contract common.Address, submit fhe.SubmitProofFn) (*fhe.DecryptionResult, error)
}
