package metrics

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSettlement forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSettlement(rec SettlementRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordSettlement(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordCharges forwards charges to sinks that support them.
func (m *MultiSink) RecordCharges(recs []ChargeRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ChargeRecorder); ok {
			if err := r.RecordCharges(recs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTransaction forwards ledger postings.
func (m *MultiSink) RecordTransaction(rec TransactionRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(TransactionRecorder); ok {
			if err := r.RecordTransaction(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordReport forwards report publication.
func (m *MultiSink) RecordReport(rec ReportRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ReportRecorder); ok {
			if err := r.RecordReport(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
