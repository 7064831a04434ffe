package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dathao-chona/SocialMine-Z/internal/interfaces"
	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	ErrRelayerUnavailable = errors.New("relayer unreachable")
	ErrRelayerResponse    = errors.New("unexpected relayer response")
)

// Client talks to the FHE coprocessor relayer: the service that registers
// encrypted inputs and serves threshold decryptions with an
// on-chain-checkable proof. Pure request shaping, the cryptographic
// protocol lives on the relayer side.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        interfaces.ILogger
}

func NewClient(baseURL string, timeout time.Duration, log interfaces.ILogger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// EncryptedInputResult is a registered ciphertext handle with the validity
// proof that must accompany it on-chain.
type EncryptedInputResult struct {
	Handle common.Hash
	Proof  []byte
}

// DecryptResult carries the disclosed plaintexts keyed by ciphertext
// handle, plus the ABI-encoded form and proof expected by the contract's
// verification entry point.
type DecryptResult struct {
	ClearValues map[common.Hash]uint64
	ABIEncoded  []byte
	Proof       []byte
}

type inputProofRequest struct {
	ContractAddress string `json:"contractAddress"`
	UserAddress     string `json:"userAddress"`
	Value           uint64 `json:"value"`
}

type inputProofResponse struct {
	Handle     string `json:"handle"`
	InputProof string `json:"inputProof"`
}

type publicDecryptRequest struct {
	Handles []string `json:"handles"`
}

type publicDecryptResponse struct {
	ClearValues     map[string]string `json:"clearValues"`
	ABIEncodedClear string            `json:"abiEncodedClearValues"`
	DecryptionProof string            `json:"decryptionProof"`
}

// CreateInputProof encrypts value client-side (relayer-side) scoped to the
// contract and user addresses, returning the ciphertext handle and its
// validity proof as an inseparable pair.
func (c *Client) CreateInputProof(ctx context.Context, contract, user common.Address, value uint64) (*EncryptedInputResult, error) {
	var resp inputProofResponse
	err := c.post(ctx, "/v1/input-proof", inputProofRequest{
		ContractAddress: contract.Hex(),
		UserAddress:     user.Hex(),
		Value:           value,
	}, &resp)
	if err != nil {
		return nil, err
	}

	proof, err := hexutil.Decode(resp.InputProof)
	if err != nil {
		return nil, lib.WrapError(ErrRelayerResponse, fmt.Errorf("input proof: %w", err))
	}

	return &EncryptedInputResult{
		Handle: common.HexToHash(resp.Handle),
		Proof:  proof,
	}, nil
}

// PublicDecrypt requests decryption of the given ciphertext handles.
func (c *Client) PublicDecrypt(ctx context.Context, handles []common.Hash) (*DecryptResult, error) {
	req := publicDecryptRequest{Handles: make([]string, len(handles))}
	for i, handle := range handles {
		req.Handles[i] = handle.Hex()
	}

	var resp publicDecryptResponse
	if err := c.post(ctx, "/v1/public-decrypt", req, &resp); err != nil {
		return nil, err
	}

	clearValues := make(map[common.Hash]uint64, len(resp.ClearValues))
	for handle, value := range resp.ClearValues {
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, lib.WrapError(ErrRelayerResponse, fmt.Errorf("clear value %q: %w", value, err))
		}
		clearValues[common.HexToHash(handle)] = parsed
	}

	encoded, err := hexutil.Decode(resp.ABIEncodedClear)
	if err != nil {
		return nil, lib.WrapError(ErrRelayerResponse, fmt.Errorf("abi encoded clear values: %w", err))
	}
	proof, err := hexutil.Decode(resp.DecryptionProof)
	if err != nil {
		return nil, lib.WrapError(ErrRelayerResponse, fmt.Errorf("decryption proof: %w", err))
	}

	return &DecryptResult{
		ClearValues: clearValues,
		ABIEncoded:  encoded,
		Proof:       proof,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lib.WrapError(ErrRelayerUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return lib.WrapError(ErrRelayerUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warnf("relayer %s returned %d: %s", path, resp.StatusCode, body)
		return lib.WrapError(ErrRelayerResponse, fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return lib.WrapError(ErrRelayerResponse, err)
	}
	return nil
}
