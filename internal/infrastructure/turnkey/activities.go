package turnkey

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	domainerrors "tipsats.backend/internal/domain/errors"
)

// StacksAccountPath is the BIP-44 path of the first Stacks account
const StacksAccountPath = "m/44'/5757'/0'/0/0"

// CreatedWallet is a provider-held wallet with its first account
type CreatedWallet struct {
	WalletID  string
	PublicKey string
}

// RawSignature is a secp256k1 signature split into its parts
type RawSignature struct {
	R string
	S string
	V string
}

// VRS returns the 65-byte v || r || s encoding
func (s *RawSignature) VRS() ([]byte, error) {
	r, err := hex.DecodeString(s.R)
	if err != nil || len(r) > 32 {
		return nil, fmt.Errorf("%w: malformed r", domainerrors.ErrSigningFailed)
	}
	sv, err := hex.DecodeString(s.S)
	if err != nil || len(sv) > 32 {
		return nil, fmt.Errorf("%w: malformed s", domainerrors.ErrSigningFailed)
	}
	v, err := hex.DecodeString(s.V)
	if err != nil || len(v) != 1 || v[0] > 3 {
		return nil, fmt.Errorf("%w: malformed recovery id", domainerrors.ErrSigningFailed)
	}

	out := make([]byte, 65)
	out[0] = v[0]
	copy(out[1+32-len(r):33], r)
	copy(out[33+32-len(sv):], sv)
	return out, nil
}

// OTPSession is the outcome of a verified email OTP
type OTPSession struct {
	UserID           string
	APIKeyID         string
	CredentialBundle string
}

// CreateWallet creates a wallet holding one compressed secp256k1 account
// at the Stacks derivation path
func (c *Client) CreateWallet(ctx context.Context, name string) (*CreatedWallet, error) {
	act, err := c.submit(ctx, "/public/v1/submit/create_wallet", "ACTIVITY_TYPE_CREATE_WALLET", map[string]interface{}{
		"walletName": name,
		"accounts": []map[string]string{{
			"curve":         "CURVE_SECP256K1",
			"pathFormat":    "PATH_FORMAT_BIP32",
			"path":          StacksAccountPath,
			"addressFormat": "ADDRESS_FORMAT_COMPRESSED",
		}},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		CreateWalletResult struct {
			WalletID  string   `json:"walletId"`
			Addresses []string `json:"addresses"`
		} `json:"createWalletResult"`
	}
	if err := json.Unmarshal(act.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet result: %w", err)
	}
	res := result.CreateWalletResult
	if res.WalletID == "" || len(res.Addresses) == 0 {
		return nil, &domainerrors.RemoteActivityError{ActivityID: act.ID, Status: "MISSING_RESULT"}
	}
	return &CreatedWallet{WalletID: res.WalletID, PublicKey: strings.ToLower(res.Addresses[0])}, nil
}

// SignRawPayload signs a 32-byte hex digest as-is with the key behind signWith
func (c *Client) SignRawPayload(ctx context.Context, signWith, payloadHex string) (*RawSignature, error) {
	act, err := c.submit(ctx, "/public/v1/submit/sign_raw_payload", "ACTIVITY_TYPE_SIGN_RAW_PAYLOAD_V2", map[string]string{
		"signWith":     signWith,
		"payload":      payloadHex,
		"encoding":     "PAYLOAD_ENCODING_HEXADECIMAL",
		"hashFunction": "HASH_FUNCTION_NO_OP",
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		SignRawPayloadResult struct {
			R string `json:"r"`
			S string `json:"s"`
			V string `json:"v"`
		} `json:"signRawPayloadResult"`
	}
	if err := json.Unmarshal(act.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signature result: %w", err)
	}
	sig := result.SignRawPayloadResult
	if sig.R == "" || sig.S == "" {
		return nil, fmt.Errorf("%w: activity %s returned no signature", domainerrors.ErrSigningFailed, act.ID)
	}
	if sig.V == "" {
		sig.V = "00"
	}
	return &RawSignature{R: sig.R, S: sig.S, V: sig.V}, nil
}

// InitOTP sends a one-time code to email and returns its id
func (c *Client) InitOTP(ctx context.Context, email string) (string, error) {
	act, err := c.submit(ctx, "/public/v1/submit/init_otp_auth", "ACTIVITY_TYPE_INIT_OTP_AUTH_V2", map[string]string{
		"otpType": "OTP_TYPE_EMAIL",
		"contact": email,
	})
	if err != nil {
		return "", err
	}

	var result struct {
		InitOtpAuthResult struct {
			OtpID string `json:"otpId"`
		} `json:"initOtpAuthResultV2"`
	}
	if err := json.Unmarshal(act.Result, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal otp result: %w", err)
	}
	if result.InitOtpAuthResult.OtpID == "" {
		return "", &domainerrors.RemoteActivityError{ActivityID: act.ID, Status: "MISSING_RESULT"}
	}
	return result.InitOtpAuthResult.OtpID, nil
}

// VerifyOTP exchanges an otp id and code for a provider session
func (c *Client) VerifyOTP(ctx context.Context, otpID, code string) (*OTPSession, error) {
	act, err := c.submit(ctx, "/public/v1/submit/otp_auth", "ACTIVITY_TYPE_OTP_AUTH", map[string]string{
		"otpId":   otpID,
		"otpCode": code,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		OtpAuthResult struct {
			UserID           string `json:"userId"`
			APIKeyID         string `json:"apiKeyId"`
			CredentialBundle string `json:"credentialBundle"`
		} `json:"otpAuthResult"`
	}
	if err := json.Unmarshal(act.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal otp auth result: %w", err)
	}
	if result.OtpAuthResult.UserID == "" {
		return nil, &domainerrors.RemoteActivityError{ActivityID: act.ID, Status: "MISSING_RESULT"}
	}
	return &OTPSession{
		UserID:           result.OtpAuthResult.UserID,
		APIKeyID:         result.OtpAuthResult.APIKeyID,
		CredentialBundle: result.OtpAuthResult.CredentialBundle,
	}, nil
}
