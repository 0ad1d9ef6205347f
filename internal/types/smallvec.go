package types

// InlineSlots is the number of elements a SmallVec stores without touching
// the heap. Four covers the dominant channel layouts (grayscale, RGB, RGBA,
// CMYK); longer sequences fall back to an exact-length buffer.
const InlineSlots = 4

// Scalar constrains SmallVec to the small numeric element types used by
// header fields (per-channel bit depths, sample counts).
type Scalar interface {
	~int | ~uint8 | ~uint16 | ~uint32
}

// SmallVec is bounded inline storage for short numeric sequences.
//
// Records hold many short fixed-cardinality fields (bits per channel is the
// canonical one). Storing those in the record's own layout instead of a
// separate heap buffer eliminates a per-record allocation in batch
// processing. Sequences longer than InlineSlots remain correct via an
// exact-length overflow buffer.
//
// The zero value is an empty vector, ready to use.
type SmallVec[T Scalar] struct {
	overflow []T
	inline   [InlineSlots]T
	n        int
}

// Set replaces the contents with a copy of values.
//
// The input is always copied, never aliased: mutating or releasing the
// caller's slice afterward does not affect the vector. Lengths up to
// InlineSlots (inclusive) use the inline slots and perform no allocation;
// longer inputs allocate a buffer of exactly len(values) elements. Any
// previous overflow buffer is dropped for the garbage collector to reclaim.
func (v *SmallVec[T]) Set(values []T) {
	if len(values) <= InlineSlots {
		v.overflow = nil
		copy(v.inline[:], values)
		// Stale inline slots beyond the new length are cleared so that a
		// shorter Set after a longer one leaves no residue.
		for i := len(values); i < InlineSlots; i++ {
			v.inline[i] = 0
		}
		v.n = len(values)
		return
	}

	buf := make([]T, len(values))
	copy(buf, values)
	v.overflow = buf
	v.n = len(values)
}

// View returns the current contents as a contiguous slice of exactly Len()
// elements, in insertion order. It never allocates: the slice is backed by
// the inline slots when Len() <= InlineSlots, by the overflow buffer
// otherwise.
//
// The returned slice is read-only. Do not modify it; the next Set
// invalidates it.
func (v *SmallVec[T]) View() []T {
	if v.n <= InlineSlots {
		return v.inline[:v.n]
	}
	return v.overflow
}

// Len returns the number of stored elements.
func (v *SmallVec[T]) Len() int {
	return v.n
}

// Inlined reports whether the contents live in the inline slots.
func (v *SmallVec[T]) Inlined() bool {
	return v.n <= InlineSlots
}

// Clone returns an independent copy. The clone shares no storage with the
// original, including the overflow buffer.
func (v *SmallVec[T]) Clone() SmallVec[T] {
	out := SmallVec[T]{inline: v.inline, n: v.n}
	if v.overflow != nil {
		out.overflow = make([]T, len(v.overflow))
		copy(out.overflow, v.overflow)
	}
	return out
}

// Reset empties the vector and drops any overflow buffer.
func (v *SmallVec[T]) Reset() {
	*v = SmallVec[T]{}
}

// estimatedSize returns the vector's heap contribution in bytes for
// footprint accounting. Inline contents contribute nothing.
func (v *SmallVec[T]) estimatedSize(elemSize int) int {
	if v.overflow == nil {
		return 0
	}
	return len(v.overflow)*elemSize + sliceOverhead
}
