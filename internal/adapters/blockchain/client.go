package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// Backend is the subset of *ethclient.Client the adapter uses
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// Client implements usecase.ChainClient for one network
type Client struct {
	network string
	chainID *big.Int
	backend Backend
	log     *slog.Logger
}

// NewClient wraps a connected backend
func NewClient(network string, chainID *big.Int, backend Backend, log *slog.Logger) *Client {
	return &Client{
		network: network,
		chainID: new(big.Int).Set(chainID),
		backend: backend,
		log:     log.With("network", network),
	}
}

// ChainID returns the chain ID verified at connect time
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

// PrepareDeployment builds an unsigned creation transaction with the next
// pending nonce, the node's gas estimate and current fees.
func (c *Client) PrepareDeployment(ctx context.Context, from common.Address, initCode []byte) (*types.Transaction, error) {
	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, Data: initCode})
	if err != nil {
		if reason := revertReason(err); reason != "" {
			return nil, fmt.Errorf("gas estimation failed, constructor would revert: %s", reason)
		}
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	head, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := c.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get gas price: %w", err)
		}
		c.log.Debug("prepared legacy deployment", "nonce", nonce, "gas", gas, "gasPrice", gasPrice)
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			Data:     initCode,
		}), nil
	}

	tip, err := c.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip cap: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	c.log.Debug("prepared deployment", "nonce", nonce, "gas", gas, "tip", tip, "feeCap", feeCap)
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		Data:      initCode,
	}), nil
}

// Submit broadcasts the signed transaction exactly once
func (c *Client) Submit(ctx context.Context, signedTx *types.Transaction) (*models.TransactionHandle, error) {
	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), signedTx)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot recover sender: %v", domain.ErrTxRejected, err)
	}

	if err := c.backend.SendTransaction(ctx, signedTx); err != nil {
		if !isAlreadyKnown(err) {
			return nil, classifySendError(err)
		}
		c.log.Debug("node already has transaction", "tx", signedTx.Hash().Hex())
	}

	return &models.TransactionHandle{
		TxHash:      signedTx.Hash(),
		Network:     c.network,
		ChainID:     c.chainID.Uint64(),
		From:        from,
		Nonce:       signedTx.Nonce(),
		SubmittedAt: time.Now(),
	}, nil
}

func isAlreadyKnown(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already known") || strings.Contains(msg, "known transaction")
}

// classifySendError marks errors the node answered with as rejections.
// Transport failures and timeouts leave delivery unknown.
func classifySendError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("%w: %v", domain.ErrTxRejected, err)
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
		return fmt.Errorf("%w: %v", domain.ErrTxRejected, err)
	}
	return err
}

// Status reports inclusion and depth. Confirmations count the inclusion
// block itself.
func (c *Client) Status(ctx context.Context, handle models.TransactionHandle) (*models.TxStatus, error) {
	receipt, err := c.backend.TransactionReceipt(ctx, handle.TxHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return &models.TxStatus{State: models.TxStatePending}, nil
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt.BlockNumber == nil {
		return &models.TxStatus{State: models.TxStatePending}, nil
	}

	head, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}
	included := receipt.BlockNumber.Uint64()
	var confirmations uint64
	if head >= included {
		confirmations = head - included + 1
	}

	status := &models.TxStatus{
		State:         models.TxStateConfirmed,
		Confirmations: confirmations,
		Receipt: &models.Receipt{
			TxHash:          receipt.TxHash,
			ContractAddress: receipt.ContractAddress,
			BlockNumber:     included,
			BlockHash:       receipt.BlockHash,
			GasUsed:         receipt.GasUsed,
			Success:         receipt.Status == types.ReceiptStatusSuccessful,
		},
	}
	if !status.Receipt.Success {
		status.State = models.TxStateFailed
		status.RevertReason = c.replayRevert(ctx, handle, included)
	}
	return status, nil
}

// replayRevert re-executes the creation call against the parent block to
// recover the revert reason. Failures here only lose the reason.
func (c *Client) replayRevert(ctx context.Context, handle models.TransactionHandle, block uint64) string {
	tx, _, err := c.backend.TransactionByHash(ctx, handle.TxHash)
	if err != nil {
		c.log.Debug("cannot load reverted transaction", "tx", handle.TxHash.Hex(), "error", err)
		return ""
	}
	msg := ethereum.CallMsg{
		From:  handle.From,
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	var at *big.Int
	if block > 0 {
		at = new(big.Int).SetUint64(block - 1)
	}
	_, err = c.backend.CallContract(ctx, msg, at)
	if err == nil {
		return ""
	}
	return revertReason(err)
}

// LocateTransaction rebuilds a handle from a transaction hash
func (c *Client) LocateTransaction(ctx context.Context, txHash common.Hash) (*models.TransactionHandle, error) {
	tx, _, err := c.backend.TransactionByHash(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("transaction %s: %w", txHash.Hex(), domain.ErrNotFound)
		}
		return nil, err
	}
	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("cannot recover sender: %w", err)
	}
	return &models.TransactionHandle{
		TxHash:  txHash,
		Network: c.network,
		ChainID: c.chainID.Uint64(),
		From:    from,
		Nonce:   tx.Nonce(),
	}, nil
}

var (
	_ usecase.ChainClient        = (*Client)(nil)
	_ usecase.TransactionLocator = (*Client)(nil)
)
