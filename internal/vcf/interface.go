// Package vcf reads structural variant calls from VCF files.
package vcf

// RecordReader is the interface for readers that yield VCF records.
type RecordReader interface {
	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*Record, error)

	// Close closes the reader and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
