package logfile

// RecordSource is what the statistics pipeline reads from. Decoder
// implements it; tests can substitute a canned sequence.
type RecordSource interface {
	Next() Result
}

var _ RecordSource = (*Decoder)(nil)
