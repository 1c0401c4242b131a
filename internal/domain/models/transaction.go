package models

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TransactionHandle references a submitted, not yet confirmed transaction.
type TransactionHandle struct {
	TxHash      common.Hash    `json:"txHash"`
	Network     string         `json:"network"`
	ChainID     uint64         `json:"chainId"`
	From        common.Address `json:"from"`
	Nonce       uint64         `json:"nonce"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

func (h TransactionHandle) String() string {
	return fmt.Sprintf("%s on %s (nonce %d)", h.TxHash.Hex(), h.Network, h.Nonce)
}

// TxState is the coarse lifecycle state of a submitted transaction
type TxState string

const (
	TxStatePending   TxState = "pending"
	TxStateConfirmed TxState = "confirmed"
	TxStateFailed    TxState = "failed"
)

// Receipt holds the receipt fields the orchestrator cares about
type Receipt struct {
	TxHash          common.Hash    `json:"txHash"`
	ContractAddress common.Address `json:"contractAddress"`
	BlockNumber     uint64         `json:"blockNumber"`
	BlockHash       common.Hash    `json:"blockHash"`
	GasUsed         uint64         `json:"gasUsed"`
	Success         bool           `json:"success"`
}

// TxStatus is a point-in-time view of a transaction.
// Confirmations counts the inclusion block itself, so a freshly mined
// transaction has one confirmation.
type TxStatus struct {
	State         TxState  `json:"state"`
	Receipt       *Receipt `json:"receipt,omitempty"`
	Confirmations uint64   `json:"confirmations"`
	RevertReason  string   `json:"revertReason,omitempty"`
}
