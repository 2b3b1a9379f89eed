package journal

import "TradeDesk/internal/model"

// NoopJournal is a no-op implementation used when no journal database
// is configured.
type NoopJournal struct{}

func NewNoopJournal() *NoopJournal { return &NoopJournal{} }

func (n *NoopJournal) RecordOrder(_ *model.Order) error             { return nil }
func (n *NoopJournal) RecordTransaction(_ *model.Transaction) error { return nil }
func (n *NoopJournal) Close() error                                 { return nil }
