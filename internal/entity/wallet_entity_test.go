package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalletBalanced(t *testing.T) {
	cases := []struct {
		name    string
		account WalletAccount
		want    bool
	}{
		{"zero wallet", WalletAccount{}, true},
		{"conserved", WalletAccount{TotalBalance: 100, AvailableBalance: 60, PendingBalance: 30, WithdrawnBalance: 10}, true},
		{"missing money", WalletAccount{TotalBalance: 100, AvailableBalance: 60}, false},
		{"negative available", WalletAccount{TotalBalance: 0, AvailableBalance: -50, PendingBalance: 50}, false},
		{"negative pending", WalletAccount{TotalBalance: 0, AvailableBalance: 50, PendingBalance: -50}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.account.Balanced())
		})
	}
}

func TestWithdrawalIsTerminal(t *testing.T) {
	assert.False(t, (&WithdrawalRequest{Status: WithdrawalStatusPending}).IsTerminal())
	assert.False(t, (&WithdrawalRequest{Status: WithdrawalStatusProcessing}).IsTerminal())
	assert.True(t, (&WithdrawalRequest{Status: WithdrawalStatusCompleted}).IsTerminal())
	assert.True(t, (&WithdrawalRequest{Status: WithdrawalStatusFailed}).IsTerminal())
	assert.True(t, (&WithdrawalRequest{Status: WithdrawalStatusCancelled}).IsTerminal())
}
