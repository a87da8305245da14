package custody

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/infrastructure/blockchain"
	"tipsats.backend/internal/infrastructure/turnkey"
	"tipsats.backend/pkg/logger"
	"tipsats.backend/pkg/metrics"
)

// Custody modes
const (
	ModeDerived = "derived"
	ModeRemote  = "remote"
)

// Custodian provisions wallets and signs transfer digests for them
type Custodian interface {
	Provision(ctx context.Context, userID, email string) (*entities.Wallet, error)
	Sign(ctx context.Context, wallet *entities.Wallet, digest [32]byte) ([]byte, error)
}

// RemoteSignerClient is the subset of the provider API used for custody
type RemoteSignerClient interface {
	CreateWallet(ctx context.Context, name string) (*turnkey.CreatedWallet, error)
	SignRawPayload(ctx context.Context, signWith, payloadHex string) (*turnkey.RawSignature, error)
}

// DerivedCustodian keeps an encrypted mnemonic per wallet and signs locally
type DerivedCustodian struct {
	deriver *Deriver
}

func NewDerivedCustodian(deriver *Deriver) *DerivedCustodian {
	return &DerivedCustodian{deriver: deriver}
}

func (c *DerivedCustodian) Provision(ctx context.Context, userID, email string) (*entities.Wallet, error) {
	key, err := c.deriver.Derive(userID)
	if err != nil {
		return nil, err
	}
	encrypted, err := c.deriver.EncryptMnemonic(key.Mnemonic, key.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt mnemonic: %w", err)
	}

	return &entities.Wallet{
		Email:             email,
		OwnerUserID:       userID,
		Address:           key.Address,
		PublicKey:         key.PublicKeyHex(),
		EncryptedMnemonic: null.StringFrom(encrypted),
	}, nil
}

func (c *DerivedCustodian) Sign(ctx context.Context, wallet *entities.Wallet, digest [32]byte) ([]byte, error) {
	if !wallet.EncryptedMnemonic.Valid {
		return nil, fmt.Errorf("%w: wallet has no stored mnemonic", domainerrors.ErrSigningFailed)
	}
	key, err := c.deriver.Restore(wallet.EncryptedMnemonic.String, wallet.OwnerUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrSigningFailed, err)
	}
	if key.Address != wallet.Address {
		return nil, fmt.Errorf("%w: restored key does not match wallet address", domainerrors.ErrSigningFailed)
	}

	rsv, err := ethcrypto.Sign(digest[:], key.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrSigningFailed, err)
	}
	return blockchain.RSVToVRS(rsv)
}

// RemoteCustodian keeps keys at the provider and signs through activities
type RemoteCustodian struct {
	client  RemoteSignerClient
	network blockchain.Network
}

func NewRemoteCustodian(client RemoteSignerClient, network blockchain.Network) *RemoteCustodian {
	return &RemoteCustodian{client: client, network: network}
}

func (c *RemoteCustodian) Provision(ctx context.Context, userID, email string) (*entities.Wallet, error) {
	created, err := c.client.CreateWallet(ctx, "tipsats-"+userID)
	if err != nil {
		return nil, err
	}

	pub, err := hex.DecodeString(strings.TrimPrefix(created.PublicKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("provider returned malformed public key: %w", err)
	}
	address, err := blockchain.AddressFromPublicKey(pub, c.network)
	if err != nil {
		return nil, err
	}

	return &entities.Wallet{
		Email:         email,
		OwnerUserID:   userID,
		Address:       address,
		PublicKey:     hex.EncodeToString(pub),
		CustodyHandle: null.StringFrom(created.WalletID),
	}, nil
}

func (c *RemoteCustodian) Sign(ctx context.Context, wallet *entities.Wallet, digest [32]byte) ([]byte, error) {
	sig, err := c.client.SignRawPayload(ctx, wallet.PublicKey, hex.EncodeToString(digest[:]))
	if err != nil {
		return nil, err
	}
	vrs, err := sig.VRS()
	if err != nil {
		return nil, err
	}

	expected, err := hex.DecodeString(wallet.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet public key is not hex", domainerrors.ErrSigningFailed)
	}
	return fixRecoveryID(digest, vrs, expected)
}

// fixRecoveryID returns vrs with the recovery id that yields expected,
// trying the provider's v first
func fixRecoveryID(digest [32]byte, vrs, expected []byte) ([]byte, error) {
	candidates := []byte{vrs[0], vrs[0] ^ 1}
	for _, v := range candidates {
		vrs[0] = v
		rsv, err := blockchain.VRSToRSV(vrs)
		if err != nil {
			return nil, err
		}
		pub, err := ethcrypto.SigToPub(digest[:], rsv)
		if err != nil {
			continue
		}
		if bytes.Equal(ethcrypto.CompressPubkey(pub), expected) {
			return vrs, nil
		}
	}
	return nil, fmt.Errorf("%w: signature does not recover to wallet key", domainerrors.ErrSigningFailed)
}

var (
	_ Custodian = (*DerivedCustodian)(nil)
	_ Custodian = (*RemoteCustodian)(nil)
	_ Custodian = (*Router)(nil)
)

// Router sends provisioning to the configured mode and signing to the
// custodian that owns the wallet
type Router struct {
	mode    string
	derived *DerivedCustodian
	remote  *RemoteCustodian
}

func NewRouter(mode string, derived *DerivedCustodian, remote *RemoteCustodian) (*Router, error) {
	switch mode {
	case ModeDerived:
		if derived == nil {
			return nil, errors.New("derived custody requires a deriver")
		}
	case ModeRemote:
		if remote == nil {
			return nil, errors.New("remote custody requires a provider client")
		}
	default:
		return nil, fmt.Errorf("unknown custody mode %q", mode)
	}
	return &Router{mode: mode, derived: derived, remote: remote}, nil
}

// Mode returns the provisioning mode
func (r *Router) Mode() string {
	return r.mode
}

func (r *Router) Provision(ctx context.Context, userID, email string) (*entities.Wallet, error) {
	if r.mode == ModeRemote {
		return r.remote.Provision(ctx, userID, email)
	}
	return r.derived.Provision(ctx, userID, email)
}

func (r *Router) Sign(ctx context.Context, wallet *entities.Wallet, digest [32]byte) ([]byte, error) {
	var (
		custodian Custodian
		mode      = ModeDerived
	)
	switch {
	case wallet.IsRemote() && r.remote != nil:
		custodian, mode = r.remote, ModeRemote
	case wallet.IsRemote():
		return nil, fmt.Errorf("%w: remote custody is not configured", domainerrors.ErrSigningFailed)
	case r.derived != nil:
		custodian = r.derived
	default:
		return nil, fmt.Errorf("%w: derived custody is not configured", domainerrors.ErrSigningFailed)
	}

	vrs, err := custodian.Sign(ctx, wallet, digest)
	if err != nil {
		metrics.SigningTotal.WithLabelValues(mode, "error").Inc()
		logger.Warn(ctx, "Signing failed",
			zap.String("mode", mode),
			zap.String("address", wallet.Address),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.SigningTotal.WithLabelValues(mode, "ok").Inc()
	return vrs, nil
}
