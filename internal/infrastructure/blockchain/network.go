package blockchain

import (
	"fmt"
	"strings"
)

// Address versions for single-sig and multi-sig principals
const (
	AddressVersionMainnetP2PKH byte = 22
	AddressVersionMainnetP2SH  byte = 20
	AddressVersionTestnetP2PKH byte = 26
	AddressVersionTestnetP2SH  byte = 21
)

// MicroSTXPerSTX is the number of base units in one STX
const MicroSTXPerSTX = 1_000_000

// Network describes one Stacks network
type Network struct {
	Name            string
	TxVersion       byte
	ChainID         uint32
	AddressVersion  byte
	MultisigVersion byte
	CoreAPIURL      string
	ExplorerURL     string
}

var (
	Mainnet = Network{
		Name:            "mainnet",
		TxVersion:       0x00,
		ChainID:         0x00000001,
		AddressVersion:  AddressVersionMainnetP2PKH,
		MultisigVersion: AddressVersionMainnetP2SH,
		CoreAPIURL:      "https://api.mainnet.hiro.so",
		ExplorerURL:     "https://explorer.stacks.co",
	}
	Testnet = Network{
		Name:            "testnet",
		TxVersion:       0x80,
		ChainID:         0x80000000,
		AddressVersion:  AddressVersionTestnetP2PKH,
		MultisigVersion: AddressVersionTestnetP2SH,
		CoreAPIURL:      "https://api.testnet.hiro.so",
		ExplorerURL:     "https://explorer.stacks.co",
	}
)

// NetworkByName resolves "mainnet" or "testnet" and applies optional
// endpoint overrides
func NetworkByName(name, coreAPIURL, explorerURL string) (Network, error) {
	var n Network
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mainnet":
		n = Mainnet
	case "testnet", "":
		n = Testnet
	default:
		return Network{}, fmt.Errorf("unsupported stacks network %q", name)
	}
	if coreAPIURL != "" {
		n.CoreAPIURL = strings.TrimRight(coreAPIURL, "/")
	}
	if explorerURL != "" {
		n.ExplorerURL = strings.TrimRight(explorerURL, "/")
	}
	return n, nil
}

// IsMainnet reports whether this is the production network
func (n Network) IsMainnet() bool {
	return n.TxVersion == Mainnet.TxVersion
}

// AcceptsVersion reports whether an address version belongs to this network
func (n Network) AcceptsVersion(version byte) bool {
	return version == n.AddressVersion || version == n.MultisigVersion
}

// ExplorerTxURL returns the explorer page for a transaction
func (n Network) ExplorerTxURL(txID string) string {
	return n.explorerURL("txid", NormalizeTxID(txID))
}

// ExplorerAddressURL returns the explorer page for an address
func (n Network) ExplorerAddressURL(address string) string {
	return n.explorerURL("address", address)
}

func (n Network) explorerURL(kind, id string) string {
	u := fmt.Sprintf("%s/%s/%s", n.ExplorerURL, kind, id)
	if !n.IsMainnet() {
		u += "?chain=testnet"
	}
	return u
}

// NormalizeTxID returns a lowercase 0x-prefixed transaction id
func NormalizeTxID(txID string) string {
	id := strings.ToLower(strings.TrimSpace(txID))
	if !strings.HasPrefix(id, "0x") {
		id = "0x" + id
	}
	return id
}
