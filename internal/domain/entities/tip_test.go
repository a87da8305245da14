package entities

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

func TestTipStatus_IsTerminal(t *testing.T) {
	if TipStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	if !TipStatusConfirmed.IsTerminal() || !TipStatusFailed.IsTerminal() {
		t.Fatal("confirmed and failed must be terminal")
	}
}

func TestWallet_IsRemote(t *testing.T) {
	derived := &Wallet{Address: "ST1"}
	if derived.IsRemote() {
		t.Fatal("wallet without custody handle must be local")
	}

	remote := &Wallet{Address: "ST1", CustodyHandle: null.StringFrom("wallet-123")}
	if !remote.IsRemote() {
		t.Fatal("wallet with custody handle must be remote")
	}

	empty := &Wallet{CustodyHandle: null.StringFrom("")}
	if empty.IsRemote() {
		t.Fatal("empty custody handle must be treated as local")
	}
}
