package main

import (
	"bytes"
	"testing"

	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestCmdDepositHappyPath(t *testing.T) {
	var output bytes.Buffer
	args := []string{
		"-depositor", "b1ca7e78f74423ae01da3b51e676934d9105f282",
		"-amount", "12.5 LUNA",
	}
	if err := cmdDeposit(nil, &output, args); err != nil {
		t.Fatalf("cannot create a deposit transaction: %s", err)
	}

	tx, _, err := readTx(&output)
	if err != nil {
		t.Fatalf("cannot unmarshal created transaction: %s", err)
	}
	txmsg, err := tx.GetMsg()
	if err != nil {
		t.Fatalf("cannot get transaction message: %s", err)
	}
	msg := txmsg.(*distributor.DepositMsg)

	assert.Equal(t, fromHex(t, "b1ca7e78f74423ae01da3b51e676934d9105f282"), []byte(msg.Depositor))
	assert.Equal(t, []*coin.Coin{coin.NewCoinp(12, 500000000, "LUNA")}, msg.Funds)
}

func TestCmdDepositZeroAmount(t *testing.T) {
	var output bytes.Buffer
	args := []string{
		"-depositor", "b1ca7e78f74423ae01da3b51e676934d9105f282",
		"-amount", "0 LUNA",
	}
	if err := cmdDeposit(nil, &output, args); err == nil {
		t.Fatal("want an error for a zero deposit")
	}
	if output.Len() != 0 {
		t.Fatal("no transaction must be written")
	}
}

func TestCmdWithdraw(t *testing.T) {
	cases := map[string]struct {
		args       []string
		wantTicker string
		wantAmount *coin.Coin
		wantErr    bool
	}{
		"whole balance": {
			args:       []string{"-owner", "b1ca7e78f74423ae01da3b51e676934d9105f282", "-ticker", "UST"},
			wantTicker: "UST",
			wantAmount: nil,
		},
		"ticker taken from the amount": {
			args:       []string{"-owner", "b1ca7e78f74423ae01da3b51e676934d9105f282", "-amount", "3 LUNA"},
			wantTicker: "LUNA",
			wantAmount: coin.NewCoinp(3, 0, "LUNA"),
		},
		"ticker mismatch": {
			args:    []string{"-owner", "b1ca7e78f74423ae01da3b51e676934d9105f282", "-ticker", "UST", "-amount", "3 LUNA"},
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var output bytes.Buffer
			err := cmdWithdraw(nil, &output, tc.args)
			if hasErr := err != nil; hasErr != tc.wantErr {
				t.Fatalf("returned error value: %+v", err)
			}
			if tc.wantErr {
				return
			}
			tx, _, err := readTx(&output)
			if err != nil {
				t.Fatalf("cannot unmarshal created transaction: %s", err)
			}
			txmsg, err := tx.GetMsg()
			if err != nil {
				t.Fatalf("cannot get transaction message: %s", err)
			}
			msg := txmsg.(*distributor.WithdrawMsg)
			assert.Equal(t, tc.wantTicker, msg.Ticker)
			assert.Equal(t, tc.wantAmount, msg.Amount)
		})
	}
}

func TestCmdDistributeContractMode(t *testing.T) {
	var output bytes.Buffer
	if err := cmdDistribute(nil, &output, []string{"-ticker", "LUNA"}); err != nil {
		t.Fatalf("cannot create a distribute transaction: %s", err)
	}
	tx, _, err := readTx(&output)
	if err != nil {
		t.Fatalf("cannot unmarshal created transaction: %s", err)
	}
	txmsg, err := tx.GetMsg()
	if err != nil {
		t.Fatalf("cannot get transaction message: %s", err)
	}
	msg := txmsg.(*distributor.DistributeMsg)
	assert.Equal(t, "LUNA", msg.Ticker)
	assert.Equal(t, 0, len(msg.Owner))
}

func TestCmdBurnTheBottom(t *testing.T) {
	var output bytes.Buffer
	if err := cmdBurnTheBottom(nil, &output, []string{"-ticker", "UST"}); err != nil {
		t.Fatalf("cannot create a burn transaction: %s", err)
	}
	tx, _, err := readTx(&output)
	if err != nil {
		t.Fatalf("cannot unmarshal created transaction: %s", err)
	}
	txmsg, err := tx.GetMsg()
	if err != nil {
		t.Fatalf("cannot get transaction message: %s", err)
	}
	assert.Equal(t, "UST", txmsg.(*distributor.BurnTheBottomMsg).Ticker)
}

func TestCmdUpdateConfigPipeline(t *testing.T) {
	var conf bytes.Buffer
	args := []string{
		"-burn", "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0",
		"-freeze",
	}
	if err := cmdUpdateConfig(nil, &conf, args); err != nil {
		t.Fatalf("cannot create an update transaction: %s", err)
	}

	var withEntry bytes.Buffer
	args = []string{
		"-address", "b1ca7e78f74423ae01da3b51e676934d9105f282",
		"-protocol", "terraswap",
	}
	if err := cmdWithWhitelistEntry(&conf, &withEntry, args); err != nil {
		t.Fatalf("cannot attach a whitelist entry: %s", err)
	}

	var withWeight bytes.Buffer
	args = []string{
		"-protocol", "terraswap",
		"-weight", "0.75",
	}
	if err := cmdWithWeight(&withEntry, &withWeight, args); err != nil {
		t.Fatalf("cannot attach a weight: %s", err)
	}

	tx, _, err := readTx(&withWeight)
	if err != nil {
		t.Fatalf("cannot unmarshal created transaction: %s", err)
	}
	txmsg, err := tx.GetMsg()
	if err != nil {
		t.Fatalf("cannot get transaction message: %s", err)
	}
	msg := txmsg.(*distributor.UpdateConfigMsg)

	assert.Equal(t, fromHex(t, "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"), []byte(msg.BurnAddress))
	if msg.Admin == nil || len(msg.Admin.Address) != 0 {
		t.Fatalf("want an empty admin patch, got %v", msg.Admin)
	}
	assert.Equal(t, 1, len(msg.Whitelist.Entries))
	assert.Equal(t, "terraswap", msg.Whitelist.Entries[0].Protocol)
	assert.Equal(t, fromHex(t, "b1ca7e78f74423ae01da3b51e676934d9105f282"), []byte(msg.Whitelist.Entries[0].Address))
	assert.Equal(t, 1, len(msg.Weights.Entries))
	assert.Equal(t, "0.75", distributor.FormatPercent(msg.Weights.Entries[0].Weight))
	if msg.DeveloperAddress != nil {
		t.Fatalf("developer address must not be patched, got %s", msg.DeveloperAddress)
	}
}

func TestCmdWithWeightRequiresUpdateConfig(t *testing.T) {
	var input bytes.Buffer
	if err := cmdBurnTheBottom(nil, &input, []string{"-ticker", "LUNA"}); err != nil {
		t.Fatalf("cannot create a burn transaction: %s", err)
	}
	var output bytes.Buffer
	if err := cmdWithWeight(&input, &output, []string{"-protocol", "x", "-weight", "1"}); err == nil {
		t.Fatal("want an error for a non update-config transaction")
	}
}
