package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dathao-chona/SocialMine-Z/internal/interfaces"
	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/dathao-chona/SocialMine-Z/internal/mining"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const writeTimeout = 1 * time.Minute

// SocialMiningEthereum is the gateway to the on-chain record store. Reads
// go through eth_call, writes build a signed transaction and report
// inclusion separately via WaitInclusion.
type SocialMiningEthereum struct {
	// config
	legacyTx bool // use legacy transaction fee, for local node testing

	// state
	nonce uint64
	mutex sync.Mutex

	// deps
	contractAddr common.Address
	contract     *bind.BoundContract
	contractABI  abi.ABI
	client       EthereumClient
	log          interfaces.ILogger
}

func NewSocialMiningEthereum(contractAddr common.Address, client EthereumClient, legacyTx bool, log interfaces.ILogger) *SocialMiningEthereum {
	contract, contractABI := newSocialMiningContract(contractAddr, client)

	return &SocialMiningEthereum{
		legacyTx:     legacyTx,
		contractAddr: contractAddr,
		contract:     contract,
		contractABI:  contractABI,
		client:       client,
		log:          log,
	}
}

func (g *SocialMiningEthereum) ContractAddress() common.Address {
	return g.contractAddr
}

func (g *SocialMiningEthereum) GetRecordIDs(ctx context.Context) ([]string, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAllBusinessIds")
	if err != nil {
		return nil, err
	}

	ids, ok := out[0].([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected getAllBusinessIds output %T", out[0])
	}
	return ids, nil
}

func (g *SocialMiningEthereum) GetRecord(ctx context.Context, recordID string) (*mining.Record, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getBusinessData", recordID)
	if err != nil {
		return nil, err
	}
	if len(out) != 8 {
		return nil, fmt.Errorf("unexpected getBusinessData output length %d", len(out))
	}

	handle, err := g.GetCiphertextHandle(ctx, recordID)
	if err != nil {
		return nil, err
	}

	return &mining.Record{
		ID:             recordID,
		Name:           out[0].(string),
		Description:    out[1].(string),
		EncryptedValue: handle,
		PublicValue1:   out[2].(*big.Int).Uint64(),
		PublicValue2:   out[3].(*big.Int).Uint64(),
		Timestamp:      time.Unix(out[4].(*big.Int).Int64(), 0),
		Creator:        out[5].(common.Address),
		IsVerified:     out[6].(bool),
		DecryptedValue: out[7].(*big.Int).Uint64(),
	}, nil
}

func (g *SocialMiningEthereum) GetCiphertextHandle(ctx context.Context, recordID string) (common.Hash, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getEncryptedValue", recordID)
	if err != nil {
		return common.Hash{}, err
	}

	raw, ok := out[0].([32]byte)
	if !ok {
		return common.Hash{}, fmt.Errorf("unexpected getEncryptedValue output %T", out[0])
	}
	return common.Hash(raw), nil
}

func (g *SocialMiningEthereum) IsAvailable(ctx context.Context) (bool, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "isAvailable")
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// CreateRecord submits a new encrypted record. The ciphertext and its
// validity proof travel in the same transaction. Returns once the
// transaction is accepted by the node; inclusion is awaited separately.
func (g *SocialMiningEthereum) CreateRecord(ctx context.Context, params mining.CreateRecordParams, privKey string) (*types.Transaction, error) {
	opts, err := g.getTransactOpts(ctx, privKey)
	if err != nil {
		return nil, classifyError(err)
	}

	tx, err := g.contract.Transact(opts, "createBusinessData",
		params.ID,
		params.Name,
		[32]byte(params.Ciphertext),
		params.Proof,
		new(big.Int).SetUint64(params.PublicValue1),
		new(big.Int).SetUint64(params.PublicValue2),
		params.Description,
	)
	if err != nil {
		g.log.Errorf("createBusinessData failed: %s", err)
		return nil, classifyError(err)
	}

	g.log.Infof("record %s submitted, tx %s", params.ID, tx.Hash())
	return tx, nil
}

// SubmitDecryptionProof puts clear values and their decryption proof on the
// contract's verification entry point.
func (g *SocialMiningEthereum) SubmitDecryptionProof(ctx context.Context, recordID string, clearValues []byte, proof []byte, privKey string) (*types.Transaction, error) {
	opts, err := g.getTransactOpts(ctx, privKey)
	if err != nil {
		return nil, classifyError(err)
	}

	tx, err := g.contract.Transact(opts, "verifyDecryption", recordID, clearValues, proof)
	if err != nil {
		g.log.Errorf("verifyDecryption failed: %s", err)
		return nil, classifyError(err)
	}

	g.log.Infof("decryption proof for record %s submitted, tx %s", recordID, tx.Hash())
	return tx, nil
}

// WaitInclusion blocks until the transaction is mined and checks the
// receipt status.
func (g *SocialMiningEthereum) WaitInclusion(ctx context.Context, tx *types.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		return err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return fmt.Errorf("transaction %s reverted", tx.Hash())
	}
	return nil
}

func (g *SocialMiningEthereum) getTransactOpts(ctx context.Context, privKey string) (*bind.TransactOpts, error) {
	privateKey, err := crypto.HexToECDSA(privKey)
	if err != nil {
		return nil, err
	}

	chainID, err := g.client.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	transactOpts, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, err
	}

	if g.legacyTx {
		gasPrice, err := g.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, err
		}
		transactOpts.GasPrice = gasPrice
	}

	fromAddr, err := lib.PrivKeyToAddr(privateKey)
	if err != nil {
		return nil, err
	}

	nonce, err := g.getNonce(ctx, fromAddr)
	if err != nil {
		return nil, err
	}

	transactOpts.Value = big.NewInt(0)
	transactOpts.Nonce = nonce
	transactOpts.Context = ctx

	return transactOpts, nil
}

func (g *SocialMiningEthereum) getNonce(ctx context.Context, from common.Address) (*big.Int, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	nonce := &big.Int{}
	blockchainNonce, err := g.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nonce, err
	}

	if g.nonce > blockchainNonce {
		nonce.SetUint64(g.nonce)
	} else {
		nonce.SetUint64(blockchainNonce)
	}

	g.nonce = nonce.Uint64() + 1

	return nonce, nil
}
