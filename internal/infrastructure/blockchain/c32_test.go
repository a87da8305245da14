package blockchain

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestC32Encode(t *testing.T) {
	assert.Equal(t, "", C32Encode(nil))
	assert.Equal(t, "1", C32Encode([]byte{0x01}))
	assert.Equal(t, "007Z", C32Encode([]byte{0x00, 0x00, 0xff}))
}

func TestC32DecodeRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{0x01},
		{0x00, 0x00, 0xff},
		{0x00, 0x00, 0x00, 0x00},
		mustHex(t, "a46ff88886c2ef9762d970b4d2c63678835bd39d"),
	}
	for _, in := range inputs {
		out, err := C32Decode(C32Encode(in))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	_, err := C32Decode("0U")
	assert.ErrorIs(t, err, ErrInvalidC32)
}

func TestC32DecodeNormalizesAmbiguousCharacters(t *testing.T) {
	a, err := C32Decode("O1")
	require.NoError(t, err)
	b, err := C32Decode("0l")
	require.NoError(t, err)
	c, err := C32Decode("0I")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestEncodeAddress_KnownVectors(t *testing.T) {
	zero := make([]byte, 20)
	addr, err := EncodeAddress(AddressVersionMainnetP2PKH, zero)
	require.NoError(t, err)
	assert.Equal(t, "SP000000000000000000002Q6VF78", addr)

	addr, err = EncodeAddress(AddressVersionTestnetP2PKH, zero)
	require.NoError(t, err)
	assert.Equal(t, "ST000000000000000000002AMW42H", addr)

	h := mustHex(t, "a46ff88886c2ef9762d970b4d2c63678835bd39d")
	cases := map[byte]string{
		AddressVersionMainnetP2PKH: "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7",
		AddressVersionMainnetP2SH:  "SM2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQVX8X0G",
		AddressVersionTestnetP2PKH: "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ",
		AddressVersionTestnetP2SH:  "SN2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKP6D2ZK9",
	}
	for version, want := range cases {
		got, err := EncodeAddress(version, h)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = EncodeAddress(AddressVersionMainnetP2PKH, []byte{1, 2})
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = C32CheckEncode(32, h)
	assert.ErrorIs(t, err, ErrInvalidC32)
}

func TestAddressFromPublicKey(t *testing.T) {
	pub := mustHex(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(Hash160(pub)))

	mainnet, err := AddressFromPublicKey(pub, Mainnet)
	require.NoError(t, err)
	assert.Equal(t, "SP1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTS1X0BPM", mainnet)

	testnet, err := AddressFromPublicKey(pub, Testnet)
	require.NoError(t, err)
	assert.Equal(t, "ST1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTSQDA7QF", testnet)

	_, err = AddressFromPublicKey(pub[1:], Testnet)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestDecodeAddress(t *testing.T) {
	version, hash, err := DecodeAddress("SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7")
	require.NoError(t, err)
	assert.Equal(t, AddressVersionMainnetP2PKH, version)
	assert.Equal(t, "a46ff88886c2ef9762d970b4d2c63678835bd39d", hex.EncodeToString(hash))

	lower, _, err := DecodeAddress("sp2j6zy48gv1ez5v2v5rb9mp66sw86pykknrv9ej7")
	require.NoError(t, err)
	assert.Equal(t, version, lower)

	// last character altered
	_, _, err = DecodeAddress("SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ8")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	for _, bad := range []string{"", "SP", "XP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJU", "SP1"} {
		_, _, err := DecodeAddress(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ", Testnet))
	assert.NoError(t, ValidateAddress("SN2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKP6D2ZK9", Testnet))
	assert.NoError(t, ValidateAddress("SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", Mainnet))

	err := ValidateAddress("SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", Testnet)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "testnet")
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
