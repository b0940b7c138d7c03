package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/iov-one/distributor/cmd/distd/app"
)

// Commands exchange transactions through a stream. Each transaction is
// protobuf serialized and prefixed with its length, a four bytes big endian
// integer, so that several transactions can be concatenated.
const txHeaderSize = 4

// maxTxSize is the largest transaction that a node with the default mempool
// configuration accepts. A longer frame means the input is not a transaction
// stream.
const maxTxSize = 1 << 20

var errTruncatedStream = errors.New("truncated transaction stream")

// writeTx writes a single length prefixed transaction and returns the number
// of bytes written.
func writeTx(w io.Writer, tx *app.Tx) (int, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return 0, fmt.Errorf("cannot serialize transaction: %s", err)
	}
	if len(raw) > maxTxSize {
		return 0, fmt.Errorf("transaction of %d bytes exceeds the %d bytes limit", len(raw), maxTxSize)
	}
	frame := make([]byte, txHeaderSize, txHeaderSize+len(raw))
	binary.BigEndian.PutUint32(frame, uint32(len(raw)))
	return w.Write(append(frame, raw...))
}

// readTx reads a single length prefixed transaction. io.EOF is returned only
// if the stream ends before the next frame starts.
func readTx(r io.Reader) (*app.Tx, int, error) {
	var header [txHeaderSize]byte
	if n, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = errTruncatedStream
		}
		return nil, n, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxTxSize {
		return nil, txHeaderSize, fmt.Errorf("transaction of %d bytes exceeds the %d bytes limit", size, maxTxSize)
	}
	raw := make([]byte, size)
	if n, err := io.ReadFull(r, raw); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = errTruncatedStream
		}
		return nil, txHeaderSize + n, err
	}

	var tx app.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, txHeaderSize + int(size), fmt.Errorf("cannot deserialize transaction: %s", err)
	}
	return &tx, txHeaderSize + int(size), nil
}

// readTxs consumes the whole stream.
func readTxs(r io.Reader) ([]*app.Tx, error) {
	var txs []*app.Tx
	for {
		tx, _, err := readTx(r)
		switch {
		case err == io.EOF:
			return txs, nil
		case err != nil:
			return nil, fmt.Errorf("transaction %d: %s", len(txs), err)
		}
		txs = append(txs, tx)
	}
}
