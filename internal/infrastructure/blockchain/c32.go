package blockchain

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/ripemd160"
)

const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ErrInvalidC32      = errors.New("invalid c32 string")
	ErrInvalidChecksum = errors.New("invalid c32check checksum")
	ErrInvalidAddress  = errors.New("invalid stacks address")

	c32Normalizer = strings.NewReplacer("O", "0", "L", "1", "I", "1")
	bigThirtyTwo  = big.NewInt(32)
)

// C32Encode encodes bytes in Crockford base32, keeping one '0' per leading
// zero byte
func C32Encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	n := new(big.Int).SetBytes(data)
	var digits []byte
	mod := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, bigThirtyTwo, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}

	var out strings.Builder
	out.Grow(zeros + len(digits))
	for i := 0; i < zeros; i++ {
		out.WriteByte(c32Alphabet[0])
	}
	for i := len(digits) - 1; i >= 0; i-- {
		out.WriteByte(digits[i])
	}
	return out.String()
}

// C32Decode reverses C32Encode. Input is normalized to upper case with
// O read as 0 and L/I read as 1.
func C32Decode(s string) ([]byte, error) {
	s = c32Normalizer.Replace(strings.ToUpper(s))

	zeros := 0
	for zeros < len(s) && s[zeros] == '0' {
		zeros++
	}

	n := new(big.Int)
	for i := zeros; i < len(s); i++ {
		idx := strings.IndexByte(c32Alphabet, s[i])
		if idx < 0 {
			return nil, fmt.Errorf("%w: unexpected character %q", ErrInvalidC32, s[i])
		}
		n.Mul(n, bigThirtyTwo)
		n.Add(n, big.NewInt(int64(idx)))
	}

	out := make([]byte, zeros, zeros+len(n.Bytes()))
	return append(out, n.Bytes()...), nil
}

// C32CheckEncode encodes data with a version character and a 4-byte
// double-SHA256 checksum
func C32CheckEncode(version byte, data []byte) (string, error) {
	if version >= 32 {
		return "", fmt.Errorf("%w: version %d out of range", ErrInvalidC32, version)
	}
	payload := make([]byte, 0, len(data)+4)
	payload = append(payload, data...)
	payload = append(payload, c32Checksum(version, data)...)
	return string(c32Alphabet[version]) + C32Encode(payload), nil
}

// C32CheckDecode returns the version and data of a c32check string
func C32CheckDecode(s string) (byte, []byte, error) {
	if len(s) < 2 {
		return 0, nil, ErrInvalidC32
	}
	s = c32Normalizer.Replace(strings.ToUpper(s))
	version := strings.IndexByte(c32Alphabet, s[0])
	if version < 0 {
		return 0, nil, fmt.Errorf("%w: bad version character", ErrInvalidC32)
	}
	decoded, err := C32Decode(s[1:])
	if err != nil {
		return 0, nil, err
	}
	if len(decoded) < 4 {
		return 0, nil, ErrInvalidChecksum
	}
	data, sum := decoded[:len(decoded)-4], decoded[len(decoded)-4:]
	if !bytes.Equal(sum, c32Checksum(byte(version), data)) {
		return 0, nil, ErrInvalidChecksum
	}
	return byte(version), data, nil
}

func c32Checksum(version byte, data []byte) []byte {
	first := sha256.Sum256(append([]byte{version}, data...))
	second := sha256.Sum256(first[:])
	return second[:4]
}

// Hash160 is RIPEMD160(SHA256(b))
func Hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

// EncodeAddress builds an "S"-prefixed principal from a version and hash160
func EncodeAddress(version byte, hash160 []byte) (string, error) {
	if len(hash160) != 20 {
		return "", fmt.Errorf("%w: hash160 must be 20 bytes", ErrInvalidAddress)
	}
	body, err := C32CheckEncode(version, hash160)
	if err != nil {
		return "", err
	}
	return "S" + body, nil
}

// DecodeAddress returns the version and hash160 of a principal
func DecodeAddress(address string) (byte, []byte, error) {
	if len(address) < 5 || (address[0] != 'S' && address[0] != 's') {
		return 0, nil, ErrInvalidAddress
	}
	version, hash, err := C32CheckDecode(address[1:])
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(hash) != 20 {
		return 0, nil, fmt.Errorf("%w: hash160 must be 20 bytes", ErrInvalidAddress)
	}
	return version, hash, nil
}

// AddressFromPublicKey derives the single-sig address of a compressed
// secp256k1 public key
func AddressFromPublicKey(pubKey []byte, network Network) (string, error) {
	if len(pubKey) != 33 {
		return "", fmt.Errorf("%w: expected 33-byte compressed public key", ErrInvalidAddress)
	}
	return EncodeAddress(network.AddressVersion, Hash160(pubKey))
}

// ValidateAddress checks the checksum of an address and that it belongs to
// the given network
func ValidateAddress(address string, network Network) error {
	version, _, err := DecodeAddress(address)
	if err != nil {
		return err
	}
	if !network.AcceptsVersion(version) {
		return fmt.Errorf("%w: version %d is not valid on %s", ErrInvalidAddress, version, network.Name)
	}
	return nil
}
