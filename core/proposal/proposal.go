// Package proposal assembles scheduled-transfer pre-proposals: the sender,
// receiver, expiry and release schedule of one spreadsheet row. Nonce, energy,
// fee and signatures are left to the wallet that signs the proposal.
package proposal

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/schedulegen/core/amount"
	"github.com/kilianp07/schedulegen/core/schedule"
)

// KindTransferWithSchedule is the transaction kind of a scheduled transfer.
const KindTransferWithSchedule = 19

var (
	// ErrScheduleMismatch is returned when amounts and effective dates do not pair up.
	ErrScheduleMismatch = errors.New("release amounts do not match effective schedule")
	// ErrAmountCount is returned when a transfer carries the wrong number of amounts for the mode.
	ErrAmountCount = errors.New("wrong number of amounts for schedule mode")
	// ErrEmptySchedule is returned when building a proposal without releases.
	ErrEmptySchedule = errors.New("proposal has no releases")
)

// Transfer is one validated input row.
type Transfer struct {
	Row      int
	Sender   string
	Receiver string
	// Amounts holds the single amount in welcome mode, or the initial amount
	// and the remaining total in multi mode.
	Amounts []amount.Amount
}

// Total returns the sum of the transfer amounts.
func (t Transfer) Total() (amount.Amount, error) { return amount.Sum(t.Amounts...) }

// Release is one scheduled disbursement.
type Release struct {
	Amount amount.Amount
	// Timestamp is the release instant in milliseconds since the epoch.
	Timestamp int64
}

// Time returns the release instant.
func (r Release) Time() time.Time { return time.UnixMilli(r.Timestamp).UTC() }

// Proposal is a finished pre-proposal. It is never modified after Build.
type Proposal struct {
	Sender   string
	Receiver string
	Expiry   time.Time
	Releases []Release
}

// Total sums all release amounts.
func (p Proposal) Total() (amount.Amount, error) {
	amounts := make([]amount.Amount, len(p.Releases))
	for i, r := range p.Releases {
		amounts[i] = r.Amount
	}
	return amount.Sum(amounts...)
}

// Builder accumulates releases and produces an immutable Proposal.
type Builder struct {
	sender   string
	receiver string
	expiry   time.Time
	releases []Release
}

// NewBuilder starts a proposal.
func NewBuilder(sender, receiver string, expiry time.Time) *Builder {
	return &Builder{sender: sender, receiver: receiver, expiry: expiry}
}

// Add appends a release at the whole second of at.
func (b *Builder) Add(a amount.Amount, at time.Time) *Builder {
	b.releases = append(b.releases, Release{Amount: a, Timestamp: at.Unix() * 1000})
	return b
}

// Build returns the finished proposal. The builder may be reused afterwards
// without affecting the returned value.
func (b *Builder) Build() (Proposal, error) {
	if len(b.releases) == 0 {
		return Proposal{}, ErrEmptySchedule
	}
	releases := make([]Release, len(b.releases))
	copy(releases, b.releases)
	return Proposal{Sender: b.sender, Receiver: b.receiver, Expiry: b.expiry, Releases: releases}, nil
}

// Plan is the per-run schedule shared read-only by every row.
type Plan struct {
	Mode      schedule.Mode
	Effective schedule.Effective
	// Planned is the number of releases before folding.
	Planned int
	// Cutoff is the earliest permitted release instant. Effective.Dates[0]
	// is the later of it and the planned first release.
	Cutoff time.Time
	Expiry time.Time
}

// NewPlan builds the effective schedule for mode and cutoff.
func NewPlan(mode schedule.Mode, cfg schedule.Config, cutoff, expiry time.Time) (Plan, error) {
	eff, err := schedule.Build(mode, cfg, cutoff)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Mode: mode, Effective: eff, Planned: cfg.Total(mode), Cutoff: cutoff, Expiry: expiry}, nil
}

// Assemble pairs the transfer amounts with the plan's effective dates.
//
// In multi mode the remaining total is split over Planned-1 releases; the
// parts whose dates were folded are added to the initial amount.
func Assemble(t Transfer, plan Plan) (Proposal, error) {
	amounts, err := releaseAmounts(t, plan)
	if err != nil {
		return Proposal{}, err
	}
	dates := plan.Effective.Dates
	if len(amounts) != len(dates) {
		return Proposal{}, fmt.Errorf("%w: %d amounts for %d dates", ErrScheduleMismatch, len(amounts), len(dates))
	}
	b := NewBuilder(t.Sender, t.Receiver, plan.Expiry)
	for i, a := range amounts {
		b.Add(a, dates[i])
	}
	return b.Build()
}

func releaseAmounts(t Transfer, plan Plan) ([]amount.Amount, error) {
	switch plan.Mode {
	case schedule.ModeWelcome:
		if len(t.Amounts) != 1 {
			return nil, fmt.Errorf("%w: %s expects 1, got %d", ErrAmountCount, plan.Mode, len(t.Amounts))
		}
		return []amount.Amount{t.Amounts[0]}, nil
	case schedule.ModeMulti:
		if len(t.Amounts) != 2 {
			return nil, fmt.Errorf("%w: %s expects 2, got %d", ErrAmountCount, plan.Mode, len(t.Amounts))
		}
		initial, remaining := t.Amounts[0], t.Amounts[1]
		parts, err := remaining.Split(plan.Planned - 1)
		if err != nil {
			return nil, err
		}
		skipped := plan.Effective.Skipped
		if skipped < 0 || skipped > len(parts) {
			return nil, fmt.Errorf("%w: %d skipped of %d parts", ErrScheduleMismatch, skipped, len(parts))
		}
		first, err := amount.Sum(append([]amount.Amount{initial}, parts[:skipped]...)...)
		if err != nil {
			return nil, err
		}
		return append([]amount.Amount{first}, parts[skipped:]...), nil
	default:
		return nil, fmt.Errorf("unknown schedule mode %s", plan.Mode)
	}
}
