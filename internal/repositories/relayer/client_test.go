package relayer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	testContract = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testUser     = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestCreateInputProof(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/input-proof", r.URL.Path)

		var req inputProofRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, testContract.Hex(), req.ContractAddress)
		require.Equal(t, testUser.Hex(), req.UserAddress)
		require.Equal(t, uint64(42), req.Value)

		_ = json.NewEncoder(w).Encode(inputProofResponse{
			Handle:     "0x00000000000000000000000000000000000000000000000000000000000000aa",
			InputProof: "0x010203",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, &lib.LoggerMock{})
	result, err := client.CreateInputProof(context.Background(), testContract, testUser, 42)

	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0xaa"), result.Handle)
	require.Equal(t, []byte{1, 2, 3}, result.Proof)
}

func TestPublicDecrypt(t *testing.T) {
	handle := common.HexToHash("0xbeef")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/public-decrypt", r.URL.Path)

		var req publicDecryptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{handle.Hex()}, req.Handles)

		_ = json.NewEncoder(w).Encode(publicDecryptResponse{
			ClearValues:     map[string]string{handle.Hex(): "17"},
			ABIEncodedClear: "0x11",
			DecryptionProof: "0x22",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, &lib.LoggerMock{})
	result, err := client.PublicDecrypt(context.Background(), []common.Hash{handle})

	require.NoError(t, err)
	require.Equal(t, uint64(17), result.ClearValues[handle])
	require.Equal(t, []byte{0x11}, result.ABIEncoded)
	require.Equal(t, []byte{0x22}, result.Proof)
}

func TestPublicDecryptBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, &lib.LoggerMock{})
	_, err := client.PublicDecrypt(context.Background(), nil)

	require.ErrorIs(t, err, ErrRelayerResponse)
}

func TestUnreachableRelayer(t *testing.T) {
	// port 1 is never listening
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, &lib.LoggerMock{})
	_, err := client.CreateInputProof(context.Background(), testContract, testUser, 1)

	require.ErrorIs(t, err, ErrRelayerUnavailable)
}

func TestPublicDecryptRejectsMalformedClearValue(t *testing.T) {
	handle := common.HexToHash("0xbeef")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(publicDecryptResponse{
			ClearValues:     map[string]string{handle.Hex(): "not a number"},
			ABIEncodedClear: "0x11",
			DecryptionProof: "0x22",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, &lib.LoggerMock{})
	_, err := client.PublicDecrypt(context.Background(), []common.Hash{handle})

	require.ErrorIs(t, err, ErrRelayerResponse)
}
