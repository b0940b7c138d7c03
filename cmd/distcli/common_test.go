package main

import (
	"bytes"
	"encoding/hex"
	"io"
	"testing"

	"github.com/iov-one/distributor/cmd/distd/app"
	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/weavetest/assert"
)

func fromHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestStreamTransactions(t *testing.T) {
	tickers := []string{"LUNA", "UST", "KRT"}

	var buf bytes.Buffer
	for _, ticker := range tickers {
		tx := &app.Tx{
			Sum: &app.Tx_DistributorBurnTheBottomMsg{DistributorBurnTheBottomMsg: &distributor.BurnTheBottomMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Ticker:   ticker,
			}},
		}
		if _, err := writeTx(&buf, tx); err != nil {
			t.Fatalf("cannot write transaction: %s", err)
		}
	}

	for _, ticker := range tickers {
		tx, _, err := readTx(&buf)
		if err != nil {
			t.Fatalf("cannot read transaction: %s", err)
		}
		msg, err := tx.GetMsg()
		if err != nil {
			t.Fatalf("cannot get transaction message: %s", err)
		}
		assert.Equal(t, ticker, msg.(*distributor.BurnTheBottomMsg).Ticker)
	}

	if _, _, err := readTx(&buf); err != io.EOF {
		t.Fatalf("want EOF after all transactions were consumed, got %v", err)
	}
}

func TestReadTruncatedTransaction(t *testing.T) {
	tx := &app.Tx{
		Sum: &app.Tx_DistributorBurnTheBottomMsg{DistributorBurnTheBottomMsg: &distributor.BurnTheBottomMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Ticker:   "LUNA",
		}},
	}
	var buf bytes.Buffer
	n, err := writeTx(&buf, tx)
	if err != nil {
		t.Fatalf("cannot write transaction: %s", err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:n-1])
	if _, _, err := readTx(truncated); err == nil {
		t.Fatal("want an error when reading a truncated transaction")
	}
}

func TestReadOversizedTransaction(t *testing.T) {
	// Header declaring 16MB of data that is never provided.
	input := bytes.NewReader([]byte{0x01, 0x00, 0x00, 0x00, 0xff})
	if _, _, err := readTx(input); err == nil || err == io.EOF {
		t.Fatalf("want an oversized frame error, got %v", err)
	}
}

func TestReadAllTransactions(t *testing.T) {
	var buf bytes.Buffer
	for _, ticker := range []string{"LUNA", "UST"} {
		tx := &app.Tx{
			Sum: &app.Tx_DistributorBurnTheBottomMsg{DistributorBurnTheBottomMsg: &distributor.BurnTheBottomMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Ticker:   ticker,
			}},
		}
		if _, err := writeTx(&buf, tx); err != nil {
			t.Fatalf("cannot write transaction: %s", err)
		}
	}
	complete := buf.Len()

	txs, err := readTxs(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("cannot read transactions: %s", err)
	}
	assert.Equal(t, 2, len(txs))
	assert.Equal(t, "UST", txs[1].GetDistributorBurnTheBottomMsg().Ticker)

	txs, err = readTxs(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("empty stream: %s", err)
	}
	assert.Equal(t, 0, len(txs))

	// A stream cut in the middle of the second transaction.
	if _, err := readTxs(bytes.NewReader(buf.Bytes()[:complete-2])); err == nil {
		t.Fatal("want an error for a truncated stream")
	}
}
