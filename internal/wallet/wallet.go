package wallet

import (
	"fmt"

	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// ConnectionState is what the workflow controller checks before any
// side-effecting operation. A nil *Wallet reports Connected=false.
type ConnectionState struct {
	Connected bool
	Address   common.Address
}

type Wallet struct {
	address    common.Address
	privateKey string
}

func NewWalletFromMnemonic(mnemonic string, accountIndex int) (*Wallet, error) {
	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}

	path := hdwallet.MustParseDerivationPath(fmt.Sprintf("m/44'/60'/0'/0/%d", accountIndex))

	account, err := wallet.Derive(path, false)
	if err != nil {
		return nil, err
	}

	address, err := wallet.Address(account)
	if err != nil {
		return nil, err
	}

	privateKey, err := wallet.PrivateKeyHex(account)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		address:    address,
		privateKey: privateKey,
	}, nil
}

func NewWalletFromPrivateKey(privateKey string) (*Wallet, error) {
	address, err := lib.PrivKeyStringToAddr(privateKey)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		address:    address,
		privateKey: privateKey,
	}, nil
}

func (w *Wallet) ConnectionState() ConnectionState {
	if w == nil {
		return ConnectionState{}
	}
	return ConnectionState{Connected: true, Address: w.address}
}

func (w *Wallet) Address() common.Address {
	return w.address
}

func (w *Wallet) PrivateKey() string {
	return w.privateKey
}
