// Package output writes pre-proposal files in the wallet's import format.
package output

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/kilianp07/schedulegen/core/proposal"
)

// BigInt is the tagged big-integer encoding used by the wallet.
type BigInt struct {
	Type  string `json:"@type"`
	Value int64  `json:"value"`
}

// SchedulePoint is one release: micro-units released at a millisecond timestamp.
type SchedulePoint struct {
	Amount    uint64 `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// Payload carries the receiver and the release schedule.
type Payload struct {
	ToAddress string          `json:"toAddress"`
	Schedule  []SchedulePoint `json:"schedule"`
}

// Transaction is the serialized pre-proposal. Nonce, energy and fee are
// empty placeholders filled in by the signer.
type Transaction struct {
	Sender          string            `json:"sender"`
	Nonce           string            `json:"nonce"`
	EnergyAmount    string            `json:"energyAmount"`
	EstimatedFee    string            `json:"estimatedFee"`
	Expiry          BigInt            `json:"expiry"`
	TransactionKind int               `json:"transactionKind"`
	Payload         Payload           `json:"payload"`
	Signatures      map[string]string `json:"signatures"`
}

// FromProposal converts p to its wire form.
func FromProposal(p proposal.Proposal) Transaction {
	points := make([]SchedulePoint, len(p.Releases))
	for i, r := range p.Releases {
		points[i] = SchedulePoint{Amount: r.Amount.Micro(), Timestamp: r.Timestamp}
	}
	return Transaction{
		Sender:          p.Sender,
		Expiry:          BigInt{Type: "bigint", Value: p.Expiry.Unix()},
		TransactionKind: proposal.KindTransferWithSchedule,
		Payload:         Payload{ToAddress: p.Receiver, Schedule: points},
		Signatures:      map[string]string{},
	}
}

// Encode writes p as indented JSON.
func Encode(w io.Writer, p proposal.Proposal) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(FromProposal(p))
}
