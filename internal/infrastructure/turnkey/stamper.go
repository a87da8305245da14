package turnkey

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const stampScheme = "SIGNATURE_SCHEME_TK_API_P256"

// Stamper signs request bodies with an API key pair
type Stamper struct {
	publicKey  string
	privateKey *ecdsa.PrivateKey
}

type stamp struct {
	PublicKey string `json:"publicKey"`
	Scheme    string `json:"scheme"`
	Signature string `json:"signature"`
}

// NewStamper parses a hex P-256 private scalar and checks it matches the
// hex compressed public key
func NewStamper(publicKeyHex, privateKeyHex string) (*Stamper, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil || len(raw) == 0 {
		return nil, errors.New("turnkey api private key must be hex")
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, errors.New("turnkey api private key out of range")
	}
	priv := &ecdsa.PrivateKey{D: d}
	priv.PublicKey.Curve = curve
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(d.FillBytes(make([]byte, 32)))

	derived := hex.EncodeToString(elliptic.MarshalCompressed(curve, priv.PublicKey.X, priv.PublicKey.Y))
	if publicKeyHex == "" {
		publicKeyHex = derived
	}
	if !strings.EqualFold(publicKeyHex, derived) {
		return nil, fmt.Errorf("turnkey api public key %s does not match private key", publicKeyHex)
	}

	return &Stamper{publicKey: strings.ToLower(publicKeyHex), privateKey: priv}, nil
}

// PublicKey returns the compressed hex public key sent in every stamp
func (s *Stamper) PublicKey() string {
	return s.publicKey
}

// Stamp returns the X-Stamp header value for body
func (s *Stamper) Stamp(body []byte) (string, error) {
	digest := sha256.Sum256(body)
	sig, err := ecdsa.SignASN1(rand.Reader, s.privateKey, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}

	payload, err := json.Marshal(stamp{
		PublicKey: s.publicKey,
		Scheme:    stampScheme,
		Signature: hex.EncodeToString(sig),
	})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}
