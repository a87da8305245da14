package blockchain

import (
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Wire constants of a single-sig STX token transfer
const (
	AuthTypeStandard         byte = 0x04
	HashModeP2PKH            byte = 0x00
	PubKeyEncodingCompressed byte = 0x00
	AnchorModeAny            byte = 0x03
	PostConditionModeAllow   byte = 0x01
	PayloadTokenTransfer     byte = 0x00
	PrincipalStandard        byte = 0x05

	MemoLength      = 34
	SignatureLength = 65

	// MinTransferFee is the relay floor for a token transfer in micro-STX
	MinTransferFee uint64 = 180
)

var ErrInvalidSignature = errors.New("invalid recoverable signature")

// TokenTransfer is a standard-auth, single-sig STX transfer with
// anchor mode any, post-condition mode allow and no post-conditions
type TokenTransfer struct {
	Network          Network
	SignerPubKey     []byte
	Nonce            uint64
	Fee              uint64
	RecipientVersion byte
	RecipientHash160 []byte
	Amount           uint64
	Memo             [MemoLength]byte
	Signature        [SignatureLength]byte
}

// BuildTransfer assembles an unsigned transfer from a compressed sender
// public key to a recipient address
func BuildTransfer(network Network, senderPubKey []byte, recipient string, amount uint64, memo string, nonce, fee uint64) (*TokenTransfer, error) {
	if len(senderPubKey) != 33 {
		return nil, fmt.Errorf("sender public key must be 33 bytes compressed, got %d", len(senderPubKey))
	}
	if amount == 0 {
		return nil, errors.New("transfer amount must be positive")
	}
	if err := ValidateAddress(recipient, network); err != nil {
		return nil, err
	}
	version, hash, err := DecodeAddress(recipient)
	if err != nil {
		return nil, err
	}

	tx := &TokenTransfer{
		Network:          network,
		SignerPubKey:     append([]byte(nil), senderPubKey...),
		Nonce:            nonce,
		Fee:              fee,
		RecipientVersion: version,
		RecipientHash160: hash,
		Amount:           amount,
	}
	copy(tx.Memo[:], TruncateMemo(memo))
	return tx, nil
}

// TruncateMemo cuts a memo to the 34-byte field without splitting a rune
func TruncateMemo(memo string) string {
	if len(memo) <= MemoLength {
		return memo
	}
	cut := MemoLength
	for cut > 0 && !utf8.RuneStart(memo[cut]) {
		cut--
	}
	return memo[:cut]
}

// SenderAddress is the address that pays for and signs the transfer
func (tx *TokenTransfer) SenderAddress() (string, error) {
	return AddressFromPublicKey(tx.SignerPubKey, tx.Network)
}

// Serialize encodes the transaction in wire format
func (tx *TokenTransfer) Serialize() []byte {
	return tx.serialize(tx.Nonce, tx.Fee, tx.Signature)
}

func (tx *TokenTransfer) serialize(nonce, fee uint64, sig [SignatureLength]byte) []byte {
	buf := make([]byte, 0, 180)
	buf = append(buf, tx.Network.TxVersion)
	buf = binary.BigEndian.AppendUint32(buf, tx.Network.ChainID)

	buf = append(buf, AuthTypeStandard, HashModeP2PKH)
	buf = append(buf, Hash160(tx.SignerPubKey)...)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	buf = binary.BigEndian.AppendUint64(buf, fee)
	buf = append(buf, PubKeyEncodingCompressed)
	buf = append(buf, sig[:]...)

	buf = append(buf, AnchorModeAny, PostConditionModeAllow)
	buf = binary.BigEndian.AppendUint32(buf, 0)

	buf = append(buf, PayloadTokenTransfer, PrincipalStandard, tx.RecipientVersion)
	buf = append(buf, tx.RecipientHash160...)
	buf = binary.BigEndian.AppendUint64(buf, tx.Amount)
	buf = append(buf, tx.Memo[:]...)
	return buf
}

// InitialSighash is the txid of the transaction with nonce, fee and
// signature cleared
func (tx *TokenTransfer) InitialSighash() [32]byte {
	return sha512.Sum512_256(tx.serialize(0, 0, [SignatureLength]byte{}))
}

// PresignSighash is the 32-byte digest the sender key signs
func (tx *TokenTransfer) PresignSighash() [32]byte {
	initial := tx.InitialSighash()
	buf := make([]byte, 0, 32+1+8+8)
	buf = append(buf, initial[:]...)
	buf = append(buf, AuthTypeStandard)
	buf = binary.BigEndian.AppendUint64(buf, tx.Fee)
	buf = binary.BigEndian.AppendUint64(buf, tx.Nonce)
	return sha512.Sum512_256(buf)
}

// ApplySignature sets a recoverable signature laid out as v || r || s
func (tx *TokenTransfer) ApplySignature(vrs []byte) error {
	if len(vrs) != SignatureLength {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(vrs))
	}
	if vrs[0] > 3 {
		return fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, vrs[0])
	}
	copy(tx.Signature[:], vrs)
	return nil
}

// Signed reports whether a signature has been applied
func (tx *TokenTransfer) Signed() bool {
	return tx.Signature != [SignatureLength]byte{}
}

// TxID is the hex id of the serialized transaction
func (tx *TokenTransfer) TxID() string {
	sum := sha512.Sum512_256(tx.Serialize())
	return hex.EncodeToString(sum[:])
}

// EstimatedLength is the serialized size used for fee estimation
func (tx *TokenTransfer) EstimatedLength() int {
	return len(tx.serialize(0, 0, [SignatureLength]byte{}))
}

// RSVToVRS reorders a 65-byte r || s || v signature into v || r || s
func RSVToVRS(rsv []byte) ([]byte, error) {
	if len(rsv) != SignatureLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(rsv))
	}
	out := make([]byte, SignatureLength)
	out[0] = rsv[64]
	copy(out[1:], rsv[:64])
	return out, nil
}

// VRSToRSV reorders a 65-byte v || r || s signature into r || s || v
func VRSToRSV(vrs []byte) ([]byte, error) {
	if len(vrs) != SignatureLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(vrs))
	}
	out := make([]byte, SignatureLength)
	copy(out, vrs[1:])
	out[64] = vrs[0]
	return out, nil
}
