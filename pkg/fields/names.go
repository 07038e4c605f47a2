package fields

import (
	"sort"
	"strconv"
	"strings"

	"github.com/facette/natsort"

	"github.com/ibmresilient/finfo/pkg/util"
)

// QualifiedName is the programmatic name of a field: "prefix.name", or just the name
// for top-level fields.
func QualifiedName(f FieldDefinition) string {
	return util.PrefixName(f.Prefix, f.Name)
}

// LocalName strips everything up to and including the last dot.
func LocalName(raw string) string {
	return raw[strings.LastIndex(raw, ".")+1:]
}

// FindField returns the first field, in source order, whose local name matches raw.
// Only the local part of raw is compared, so fields that share a name under different
// prefixes resolve to whichever the source lists first.
func FindField(fields []FieldDefinition, raw string) (FieldDefinition, bool) {
	name := LocalName(raw)
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// SortByQualifiedName returns a sorted copy of fields. Ties on the qualified name are
// broken on the remaining attributes so the order does not depend on the input order.
func SortByQualifiedName(fields []FieldDefinition) []FieldDefinition {
	sorted := make([]FieldDefinition, len(fields))
	copy(sorted, fields)

	sort.SliceStable(sorted, func(i, j int) bool {
		qi, qj := QualifiedName(sorted[i]), QualifiedName(sorted[j])
		if qi != qj {
			return qi < qj
		}
		return tieKey(sorted[i]) < tieKey(sorted[j])
	})

	return sorted
}

func tieKey(f FieldDefinition) string {
	req := ""
	if r, ok := f.Required.Get(); ok {
		req = r.String()
	}
	return strings.Join([]string{
		req,
		f.InputType.OrZero(),
		f.Text.OrZero(),
		f.Tooltip.OrZero(),
		f.Placeholder.OrZero(),
	}, "\x00")
}

// SortedValues returns a copy of the field's values ordered by value id.
func SortedValues(f FieldDefinition) []ValueDefinition {
	sorted := make([]ValueDefinition, len(f.Values))
	copy(sorted, f.Values)

	sort.SliceStable(sorted, func(i, j int) bool {
		return valueLess(sorted[i].Value, sorted[j].Value)
	})

	return sorted
}

func valueLess(a, b ValueID) bool {
	ai, aErr := strconv.ParseInt(string(a), 10, 64)
	bi, bErr := strconv.ParseInt(string(b), 10, 64)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return natsort.Compare(string(a), string(b))
}
