package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ABI of the SocialMining contract, bound by hand since the contract is not
// part of this repository.
const socialMiningABIJSON = `[
	{"inputs":[],"name":"getAllBusinessIds","outputs":[{"internalType":"string[]","name":"","type":"string[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"string","name":"businessId","type":"string"}],"name":"getBusinessData","outputs":[{"internalType":"string","name":"name","type":"string"},{"internalType":"string","name":"description","type":"string"},{"internalType":"uint256","name":"publicValue1","type":"uint256"},{"internalType":"uint256","name":"publicValue2","type":"uint256"},{"internalType":"uint256","name":"timestamp","type":"uint256"},{"internalType":"address","name":"creator","type":"address"},{"internalType":"bool","name":"isVerified","type":"bool"},{"internalType":"uint256","name":"decryptedValue","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"string","name":"businessId","type":"string"}],"name":"getEncryptedValue","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"isAvailable","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"string","name":"businessId","type":"string"},{"internalType":"string","name":"name","type":"string"},{"internalType":"bytes32","name":"encryptedValue","type":"bytes32"},{"internalType":"bytes","name":"inputProof","type":"bytes"},{"internalType":"uint256","name":"publicValue1","type":"uint256"},{"internalType":"uint256","name":"publicValue2","type":"uint256"},{"internalType":"string","name":"description","type":"string"}],"name":"createBusinessData","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"string","name":"businessId","type":"string"},{"internalType":"bytes","name":"clearValues","type":"bytes"},{"internalType":"bytes","name":"decryptionProof","type":"bytes"}],"name":"verifyDecryption","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

func mustSocialMiningABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(socialMiningABIJSON))
	if err != nil {
		panic("invalid social mining ABI: " + err.Error())
	}
	return parsed
}

func newSocialMiningContract(addr common.Address, backend EthereumClient) (*bind.BoundContract, abi.ABI) {
	parsed := mustSocialMiningABI()
	return bind.NewBoundContract(addr, parsed, backend, backend, backend), parsed
}
