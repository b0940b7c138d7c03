package client

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/distributor/x/transfertax"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/x/sigs"
	"github.com/pkg/errors"
	cmn "github.com/tendermint/tendermint/libs/common"
	nm "github.com/tendermint/tendermint/node"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

type Header = tmtypes.Header
type Status = ctypes.ResultStatus
type GenesisDoc = tmtypes.GenesisDoc

const BroadcastTxSyncDefaultTimeOut = 15 * time.Second

// Client is an interface to interact with the distributor node.
type Client interface {
	TendermintClient() client.Client
	GetUser(addr weave.Address) (*UserResponse, error)
	GetWallet(addr weave.Address) (*WalletResponse, error)
	BroadcastTx(tx weave.Tx) BroadcastTxResponse
	BroadcastTxAsync(tx weave.Tx, out chan<- BroadcastTxResponse)
	BroadcastTxSync(tx weave.Tx, timeout time.Duration) BroadcastTxResponse
	AbciQuery(path string, data []byte) (AbciResponse, error)
}

// DistClient is a tendermint client wrapped to provide simple access to the
// data structures used by the distributor node.
type DistClient struct {
	conn client.Client
}

var _ Client = (*DistClient)(nil)

// NewClient wraps a DistClient around an existing tendermint client
// connection.
func NewClient(conn client.Client) *DistClient {
	return &DistClient{conn: conn}
}

// NewHTTPConnection returns a connection to a remote node, for example
// "http://localhost:26657". Events are received over the websocket endpoint.
func NewHTTPConnection(remote string) client.Client {
	return client.NewHTTP(remote, "/websocket")
}

// NewLocalConnection returns a connection to a node running in the same
// process.
func NewLocalConnection(node *nm.Node) client.Client {
	return client.NewLocal(node)
}

func (dc *DistClient) TendermintClient() client.Client {
	return dc.conn
}

// Nonce has a client/address pair, queries for the nonce
// and caches recent nonce locally to quickly sign
type Nonce struct {
	mutex     sync.Mutex
	client    Client
	addr      weave.Address
	nonce     int64
	fromQuery bool
}

// NewNonce creates a nonce for a client / address pair.
// Call Query to force a query, Next to use cache if possible
func NewNonce(client Client, addr weave.Address) *Nonce {
	return &Nonce{client: client, addr: addr}
}

// Query always queries the blockchain for the next nonce
func (n *Nonce) Query() (int64, error) {
	user, err := n.client.GetUser(n.addr)
	if err != nil {
		return 0, err
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if user != nil {
		n.nonce = user.UserData.Sequence
	} else {
		n.nonce = 0 // new account starts at 0
	}
	n.fromQuery = true
	return n.nonce, nil
}

// Next will use a cached value if present, otherwise Query.
// It will always increment by 1, assuming last nonce
// was properly used.
func (n *Nonce) Next() (int64, error) {
	n.mutex.Lock()
	uninitialized := !n.fromQuery && n.nonce == 0
	n.mutex.Unlock()
	if uninitialized {
		return n.Query()
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.nonce++
	n.fromQuery = false
	return n.nonce, nil
}

// Status will return the raw status from the node
func (dc *DistClient) Status() (*Status, error) {
	return dc.conn.Status()
}

// Genesis will return the genesis directly from the node
func (dc *DistClient) Genesis() (*GenesisDoc, error) {
	gen, err := dc.conn.Genesis()
	if err != nil {
		return nil, err
	}
	return gen.Genesis, nil
}

// ChainID will parse out the chainID from the genesis
func (dc *DistClient) ChainID() (string, error) {
	gen, err := dc.Genesis()
	if err != nil {
		return "", err
	}
	return gen.ChainID, nil
}

// Height will parse out the Height from the status result
func (dc *DistClient) Height() (int64, error) {
	status, err := dc.conn.Status()
	if err != nil {
		return -1, err
	}
	return status.SyncInfo.LatestBlockHeight, nil
}

// AbciResponse contains a query result:
// a (possibly empty) list of key-value pairs, and the height
// at which it queried
type AbciResponse struct {
	Models []weave.Model
	Height int64
}

// AbciQuery calls abci query on tendermint rpc,
// verifies if it is an error or empty, and if there is
// data pulls out the ResultSets from keys and values into
// a useful AbciResponse struct
func (dc *DistClient) AbciQuery(path string, data []byte) (AbciResponse, error) {
	var out AbciResponse

	q, err := dc.conn.ABCIQuery(path, data)
	if err != nil {
		return out, err
	}
	resp := q.Response
	if resp.IsErr() {
		return out, errors.Errorf("(%d): %s", resp.Code, resp.Log)
	}
	out.Height = resp.Height

	if len(resp.Key) == 0 {
		return out, nil
	}

	var keys, vals app.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return out, errors.Wrap(err, "keys")
	}
	if err := vals.Unmarshal(resp.Value); err != nil {
		return out, errors.Wrap(err, "values")
	}
	out.Models, err = app.JoinResults(&keys, &vals)
	return out, err
}

// BroadcastTxResponse is the result of submitting a transaction.
type BroadcastTxResponse struct {
	Error    error                           // not-nil if there was an error sending
	Response *ctypes.ResultBroadcastTxCommit // not-nil if we got response from node
}

// IsError returns the error for failure if it failed,
// or null if it succeeded
func (b BroadcastTxResponse) IsError() error {
	if b.Error != nil {
		return b.Error
	}
	if b.Response.CheckTx.IsErr() {
		ctx := b.Response.CheckTx
		return errors.Errorf("CheckTx error: (%d) %s", ctx.Code, ctx.Log)
	}
	if b.Response.DeliverTx.IsErr() {
		dtx := b.Response.DeliverTx
		return errors.Errorf("DeliverTx error: (%d) %s", dtx.Code, dtx.Log)
	}
	return nil
}

// BroadcastTx serializes a signed transaction and writes to the
// blockchain. It returns when the tx is committed to the
// blockchain.
func (dc *DistClient) BroadcastTx(tx weave.Tx) BroadcastTxResponse {
	out := make(chan BroadcastTxResponse, 1)
	defer close(out)
	go dc.BroadcastTxAsync(tx, out)
	return <-out
}

// BroadcastTxSync submits the transaction and waits until it is included in
// a block or the timeout is reached.
func (dc *DistClient) BroadcastTxSync(tx weave.Tx, timeout time.Duration) BroadcastTxResponse {
	data, err := tx.Marshal()
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}

	res, err := dc.conn.BroadcastTxSync(data)
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}
	if res.Code != 0 {
		return BroadcastTxResponse{Error: errors.WithMessage(errors.Errorf("CheckTx failed with code %d", res.Code), res.Log)}
	}

	evt, err := dc.WaitForTxEvent(data, timeout)
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}
	txe, ok := evt.(tmtypes.EventDataTx)
	if !ok {
		return BroadcastTxResponse{Error: errors.Errorf("unexpected event type %T", evt)}
	}
	return BroadcastTxResponse{
		Response: &ctypes.ResultBroadcastTxCommit{
			DeliverTx: txe.Result,
			Height:    txe.Height,
			Hash:      txe.Tx.Hash(),
		},
	}
}

// WaitForTxEvent blocks until the transaction is included in a block.
func (dc *DistClient) WaitForTxEvent(tx tmtypes.Tx, timeout time.Duration) (tmtypes.TMEventData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	query := tmtypes.EventQueryTxFor(tx)

	subscriber := hex.EncodeToString(append(tx.Hash(), cmn.RandBytes(2)...))
	evts, err := dc.conn.Subscribe(ctx, subscriber, query.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to subscribe")
	}
	defer dc.conn.UnsubscribeAll(ctx, subscriber)

	select {
	case evt := <-evts:
		return evt.Data.(tmtypes.TMEventData), nil
	case <-ctx.Done():
		return nil, errors.New("timed out waiting for event")
	}
}

// BroadcastTxAsync can be run in a goroutine and will output
// the result or error to the given channel.
func (dc *DistClient) BroadcastTxAsync(tx weave.Tx, out chan<- BroadcastTxResponse) {
	data, err := tx.Marshal()
	if err != nil {
		out <- BroadcastTxResponse{Error: err}
		return
	}
	res, err := dc.conn.BroadcastTxCommit(data)
	out <- BroadcastTxResponse{
		Error:    err,
		Response: res,
	}
}

// UserResponse is a response on a query for a User
type UserResponse struct {
	Address  weave.Address
	UserData sigs.UserData
	Height   int64
}

// GetUser will return nonce and public key registered
// for a given address if it was ever used.
// If it returns (nil, nil), then this address never signed
// a transaction before (and can use nonce = 0)
func (dc *DistClient) GetUser(addr weave.Address) (*UserResponse, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid address")
	}
	resp, err := dc.AbciQuery("/auth", addr)
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, nil
	}
	model := resp.Models[0]
	acct := bucketKeyToAddr(model.Key)
	if !addr.Equals(acct) {
		return nil, errors.Errorf("mismatch, queried %s, returned %s", addr, acct)
	}
	out := UserResponse{
		Address: acct,
		Height:  resp.Height,
	}
	if err := out.UserData.Unmarshal(model.Value); err != nil {
		return nil, err
	}
	return &out, nil
}

// DepositResponse is a response on a query for a ledger entry.
type DepositResponse struct {
	Deposit distributor.Deposit
	Height  int64
}

// GetDeposit returns the ledger entry of given owner and ticker. An entry that
// was never created is returned with a zero amount.
func (dc *DistClient) GetDeposit(owner weave.Address, ticker string) (*DepositResponse, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid owner")
	}
	resp, err := dc.AbciQuery("/deposits", distributor.DepositKey(owner, ticker))
	if err != nil {
		return nil, err
	}
	out := DepositResponse{Height: resp.Height}
	if len(resp.Models) == 0 {
		out.Deposit = distributor.Deposit{
			Metadata: &weave.Metadata{Schema: 1},
			Owner:    owner,
			Amount:   coin.NewCoin(0, 0, ticker),
		}
		return &out, nil
	}
	if err := out.Deposit.Unmarshal(resp.Models[0].Value); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return &out, nil
}

// GetReserve returns the sum of all ledger entries of given ticker. The
// reserve of a currency that was never deposited is zero.
func (dc *DistClient) GetReserve(ticker string) (*distributor.Reserve, error) {
	resp, err := dc.AbciQuery("/reserves", []byte(ticker))
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return &distributor.Reserve{
			Metadata: &weave.Metadata{Schema: 1},
			Amount:   coin.NewCoin(0, 0, ticker),
		}, nil
	}
	var r distributor.Reserve
	if err := r.Unmarshal(resp.Models[0].Value); err != nil {
		return nil, errors.Wrap(err, "reserve")
	}
	return &r, nil
}

// GetConfiguration returns the current distributor configuration.
func (dc *DistClient) GetConfiguration() (*distributor.Configuration, error) {
	resp, err := dc.AbciQuery("/distributorconf", nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, errors.New("distributor is not configured")
	}
	var conf distributor.Configuration
	if err := conf.Unmarshal(resp.Models[0].Value); err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	return &conf, nil
}

// GetTaxConfiguration returns the current transfer tax configuration or nil if
// the tax is not configured.
func (dc *DistClient) GetTaxConfiguration() (*transfertax.Configuration, error) {
	resp, err := dc.AbciQuery("/transfertaxconf", nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, nil
	}
	var conf transfertax.Configuration
	if err := conf.Unmarshal(resp.Models[0].Value); err != nil {
		return nil, errors.Wrap(err, "tax configuration")
	}
	return &conf, nil
}

// cash and sigs bucket keys are the address prefixed with a five characters
// long bucket name.
func bucketKeyToAddr(key []byte) weave.Address {
	return key[5:]
}
