package binding

import (
	"strings"

	"github.com/ginjaninja78/offer-docgen/internal/config"
	"github.com/ginjaninja78/offer-docgen/internal/types"
)

// AttentionStyle is the formatting of an unfilled required field.
type AttentionStyle struct {
	// Sentinel is the placeholder text meaning "please fill in".
	Sentinel string

	// Color is the hex RGB colour of the marker.
	Color string
}

// BuildPlainContext resolves every field of mapping against record.
// Attention flags are ignored.
func BuildPlainContext(record types.Record, mapping config.Mapping) types.Context {
	ctx := make(types.Context, mapping.Len())
	for _, spec := range mapping.Fields() {
		ctx[spec.Key] = types.Plain(Resolve(record, spec.Column, spec.Default))
	}
	return ctx
}

// BuildAttentionContext resolves every field like BuildPlainContext, except
// that an attention-flagged field whose value trims to the sentinel becomes
// a bold, coloured marker carrying the sentinel text.
func BuildAttentionContext(record types.Record, mapping config.Mapping, style AttentionStyle) types.Context {
	ctx := make(types.Context, mapping.Len())
	for _, spec := range mapping.Fields() {
		v := Resolve(record, spec.Column, spec.Default)
		if spec.Attention && isSentinel(v, style.Sentinel) {
			ctx[spec.Key] = types.Styled(style.Sentinel, types.Style{Bold: true, Color: style.Color})
			continue
		}
		ctx[spec.Key] = types.Plain(v)
	}
	return ctx
}

func isSentinel(v types.Value, sentinel string) bool {
	if v.Kind() != types.KindText {
		return false
	}
	return strings.TrimSpace(v.TextValue()) == sentinel
}
