// ABOUTME: Texture-presence extractor: does an input sample an image texture with a bound image?
// ABOUTME: Built on backward search with a kind predicate; only the first match is considered.
package extract

import (
	"github.com/2389-research/nodetrace/graph"
	"github.com/2389-research/nodetrace/search"
)

// Texture returns the first image texture node upstream of start, provided it
// has a bound image. An image texture without an image does not count, and
// later matches are not consulted.
func Texture(start *graph.Port, ctx *ExportContext) *graph.Node {
	results := search.Search(start, search.ByKind(graph.KindImageTexture), ctx.options()...)
	if len(results) == 0 {
		return nil
	}
	n := results[0].Node
	if !HasImage(n) {
		return nil
	}
	return n
}

// HasImage reports whether an image texture node has a bound image resource.
func HasImage(n *graph.Node) bool {
	return n != nil && n.Kind == graph.KindImageTexture && n.Prop("image") != ""
}
