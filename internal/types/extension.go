package types

// Extension holds the format-specific portion of a Record: palette bytes,
// channel masks, chunk maps, IFD entries, whatever the container format
// carries beyond the shared fields.
//
// Each format package provides exactly one implementation. The set is
// deliberately closed: a Record delegates to its extension through this
// interface instead of per-format subclassing, and validators get their
// typed header back with a type assertion.
type Extension interface {
	// EstimatedSize returns the extension's heap contribution in bytes,
	// using the same accounting rules as Record.EstimatedMemoryUsage.
	// Must be cheap and must never fail.
	EstimatedSize() int

	// Clear releases every buffer and collection the extension holds.
	// Must be idempotent.
	Clear()

	// CloneExtension returns a deep copy sharing no mutable state with
	// the receiver.
	CloneExtension() Extension

	// ClearStages splits Clear into independently meaningful steps for
	// the staged disposal path. Each stage clears one large buffer or
	// collection; running all stages in order must be equivalent to
	// Clear. Implementations with nothing large may return a single
	// stage.
	ClearStages() []func()
}
