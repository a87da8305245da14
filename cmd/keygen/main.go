package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"

	"tipsats.backend/internal/infrastructure/turnkey"
)

type secrets struct {
	SessionEncryptionKey string
	WalletEncryptionSalt string
	APIPublicKey         string
	APIPrivateKey        string
}

func main() {
	saltLen := flag.Int("salt-len", 32, "wallet salt hex length (must be even)")
	withAPIKey := flag.Bool("api-key", false, "also generate a P-256 custody API key pair")
	flag.Parse()

	s, err := buildSecrets(*saltLen, *withAPIKey)
	if err != nil {
		log.Fatalf("failed to generate secrets: %v", err)
	}

	fmt.Println("Generated TipSats secrets")
	fmt.Printf("SESSION_ENCRYPTION_KEY=%s\n", s.SessionEncryptionKey)
	fmt.Printf("WALLET_ENCRYPTION_SALT=%s\n", s.WalletEncryptionSalt)
	if s.APIPrivateKey != "" {
		fmt.Printf("TURNKEY_API_PUBLIC_KEY=%s\n", s.APIPublicKey)
		fmt.Printf("TURNKEY_API_PRIVATE_KEY=%s\n", s.APIPrivateKey)
	}
}

func validateSaltLen(n int) error {
	if n < 16 || n%2 != 0 {
		return fmt.Errorf("invalid salt-len: %d (must be even and at least 16)", n)
	}
	return nil
}

func buildSecrets(saltLen int, withAPIKey bool) (*secrets, error) {
	if err := validateSaltLen(saltLen); err != nil {
		return nil, err
	}
	sessionKey, err := generateRandomHex(64)
	if err != nil {
		return nil, err
	}
	salt, err := generateRandomHex(saltLen)
	if err != nil {
		return nil, err
	}
	s := &secrets{SessionEncryptionKey: sessionKey, WalletEncryptionSalt: salt}
	if withAPIKey {
		s.APIPublicKey, s.APIPrivateKey, err = generateAPIKeyPair()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// generateAPIKeyPair returns a hex compressed public key and hex private
// scalar, checked by loading them into a stamper
func generateAPIKeyPair() (string, string, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", err
	}
	pub := hex.EncodeToString(elliptic.MarshalCompressed(elliptic.P256(), priv.X, priv.Y))
	secret := hex.EncodeToString(priv.D.FillBytes(make([]byte, 32)))
	stamper, err := turnkey.NewStamper(pub, secret)
	if err != nil {
		return "", "", err
	}
	if stamper.PublicKey() != pub {
		return "", "", errors.New("generated key pair does not round-trip")
	}
	return pub, secret, nil
}

func generateRandomHex(n int) (string, error) {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
