package imagemeta

import (
	"github.com/simonhull/imagemeta/internal/types"
)

// Record is an alias to types.Record.
// Re-exporting from internal/types to keep one public API surface.
type Record = types.Record

// Extension is an alias to types.Extension, the per-format capability
// interface a Record delegates its format-specific state to.
type Extension = types.Extension

// DefaultLargeMetadataThreshold is the default byte-size cutoff above which
// disposal takes the staged path. Tunable per record and per Open call.
const DefaultLargeMetadataThreshold = types.DefaultLargeMetadataThreshold

// NewRecord returns an empty metadata record with default settings.
//
// Most callers never construct records directly; Open populates one from
// the file's header. Direct construction is for pipelines that synthesize
// metadata.
func NewRecord() *Record {
	return types.NewRecord()
}
