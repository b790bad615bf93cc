// ABOUTME: Export context: identity and traversal options of one export run.
// ABOUTME: Contexts key the result cache so entries never leak between runs.
package extract

import (
	"github.com/oklog/ulid/v2"

	"github.com/2389-research/nodetrace/search"
)

// ExportContext identifies one export run over one material.
type ExportContext struct {
	ID       ulid.ULID
	Material string
	Options  []search.Option
}

// NewExportContext creates a context with a fresh ULID.
func NewExportContext(material string, opts ...search.Option) *ExportContext {
	return &ExportContext{
		ID:       ulid.Make(),
		Material: material,
		Options:  opts,
	}
}

func (c *ExportContext) options() []search.Option {
	if c == nil {
		return nil
	}
	return c.Options
}

func (c *ExportContext) id() ulid.ULID {
	if c == nil {
		return ulid.ULID{}
	}
	return c.ID
}
