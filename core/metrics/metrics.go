package metrics

// ProposalEvent describes one generated proposal.
type ProposalEvent struct {
	Mode     string
	Releases int
	Skipped  int
	// Micro is the transferred amount in micro-units.
	Micro uint64
}

// RunSink records the outcome of a batch run.
type RunSink interface {
	RecordProposal(ev ProposalEvent) error
	RecordRejected(reason string) error
	// Flush exports everything recorded so far.
	Flush() error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordProposal(ProposalEvent) error { return nil }
func (NopSink) RecordRejected(string) error        { return nil }
func (NopSink) Flush() error                       { return nil }
