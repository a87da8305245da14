package custody

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/infrastructure/blockchain"
	pkgcrypto "tipsats.backend/pkg/crypto"
)

// BIP-44 coin type registered for Stacks
const stacksCoinType = 5757

// DerivedKey is everything reproducible from a user id and the app salt
type DerivedKey struct {
	Mnemonic   string
	Password   string
	PrivateKey *ecdsa.PrivateKey
	PublicKey  []byte
	Address    string
}

// PublicKeyHex is the compressed public key in hex
func (k *DerivedKey) PublicKeyHex() string {
	return hex.EncodeToString(k.PublicKey)
}

// Deriver turns (userId, salt) into a Stacks account
type Deriver struct {
	salt    string
	network blockchain.Network
}

// NewDeriver fails when the salt is empty
func NewDeriver(salt string, network blockchain.Network) (*Deriver, error) {
	if strings.TrimSpace(salt) == "" {
		return nil, domainerrors.ErrMissingSalt
	}
	return &Deriver{salt: salt, network: network}, nil
}

// Network returns the network addresses are encoded for
func (d *Deriver) Network() blockchain.Network {
	return d.network
}

// Derive returns the deterministic mnemonic, password and key of a user
func (d *Deriver) Derive(userID string) (*DerivedKey, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domainerrors.ErrInvalidInput)
	}

	entropy := sha256.Sum256([]byte(d.salt + "-" + userID + "-entropy"))
	mnemonic, err := bip39.NewMnemonic(entropy[:])
	if err != nil {
		return nil, fmt.Errorf("failed to build mnemonic: %w", err)
	}

	key, err := d.fromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	key.Password = d.password(userID)
	return key, nil
}

func (d *Deriver) password(userID string) string {
	sum := sha256.Sum256([]byte(d.salt + "-" + userID + "-password"))
	return hex.EncodeToString(sum[:])
}

// fromMnemonic walks m/44'/5757'/0'/0/0 from the BIP-39 seed
func (d *Deriver) fromMnemonic(mnemonic string) (*DerivedKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	// chain params only select the xprv version bytes
	node, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + stacksCoinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		0,
	}
	for _, idx := range path {
		if node, err = node.Derive(idx); err != nil {
			return nil, fmt.Errorf("failed to derive child key: %w", err)
		}
	}

	ecPriv, err := node.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	priv, err := ethcrypto.ToECDSA(ecPriv.Serialize())
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key: %w", err)
	}

	pub := ethcrypto.CompressPubkey(&priv.PublicKey)
	address, err := blockchain.AddressFromPublicKey(pub, d.network)
	if err != nil {
		return nil, err
	}
	return &DerivedKey{Mnemonic: mnemonic, PrivateKey: priv, PublicKey: pub, Address: address}, nil
}

// EncryptMnemonic seals a mnemonic under the derived password
func (d *Deriver) EncryptMnemonic(mnemonic, password string) (string, error) {
	return pkgcrypto.Seal(mnemonic, password)
}

// Restore opens a stored mnemonic and rebuilds the signing key
func (d *Deriver) Restore(encryptedMnemonic, userID string) (*DerivedKey, error) {
	password := d.password(userID)
	mnemonic, err := pkgcrypto.Open(encryptedMnemonic, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open mnemonic: %w", err)
	}

	key, err := d.fromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	key.Password = password
	return key, nil
}
