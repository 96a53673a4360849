package entities

import "sort"

// RemoveSentinel is the field value meaning "delete this attribute" rather
// than "set it to the string Remove".
const RemoveSentinel = "Remove"

// DefaultGuardAttr is the whole-record last-writer-wins marker. Sub-record
// kinds with independent upstream writers use per-field variants such as
// "repair_updated".
const DefaultGuardAttr = "updated"

// WritePlan is a store-agnostic description of one conditional merge: which
// attributes to set, which to remove, whether the write targets a nested
// container, and the timestamp guard protecting it.
type WritePlan struct {
	// Set maps canonical attribute names to values. Values are plain Go data
	// (string, bool, json.Number, nested map[string]any, []any, nil).
	Set map[string]any

	// Remove lists attribute names to delete in the same write.
	Remove []string

	// Container, when non-empty, scopes Set and Remove under a named
	// sub-object (e.g. "offering" → offering.field). Flat when empty.
	Container string

	// GuardAttr is the timestamp attribute guarding the write. Empty disables
	// the guard entirely (used only for key-scoped attribute removal).
	GuardAttr string

	// Guard is the incoming canonical timestamp compared against GuardAttr.
	Guard string
}

// BuildWritePlan assembles a plan from normalized fields, splitting out Remove
// sentinel values and appending the attributes the normalizer diffed away.
// Fields are not mutated.
func BuildWritePlan(fields map[string]any, removed []string, container, guardAttr, guard string) WritePlan {
	set := make(map[string]any, len(fields))
	var remove []string
	for k, v := range fields {
		if s, ok := v.(string); ok && s == RemoveSentinel {
			remove = append(remove, k)
			continue
		}
		set[k] = v
	}
	remove = append(remove, removed...)
	sort.Strings(remove)

	if guardAttr == "" && guard != "" {
		guardAttr = DefaultGuardAttr
	}
	return WritePlan{
		Set:       set,
		Remove:    remove,
		Container: container,
		GuardAttr: guardAttr,
		Guard:     guard,
	}
}

// Empty reports whether the plan has nothing to set and nothing to remove.
func (p WritePlan) Empty() bool {
	return len(p.Set) == 0 && len(p.Remove) == 0
}

// WriteOutcome is the result of one conditional write attempt.
type WriteOutcome int

const (
	// WriteApplied: the merge landed.
	WriteApplied WriteOutcome = iota

	// WriteSkippedStale: a newer or equal write already holds the record.
	// Expected under redelivery and reordering; informational only.
	WriteSkippedStale

	// WriteCreatedContainer: the fallback path created the nested container
	// as a whole map because the merge found no container to merge into.
	WriteCreatedContainer
)

func (o WriteOutcome) String() string {
	switch o {
	case WriteApplied:
		return "applied"
	case WriteSkippedStale:
		return "skipped_stale"
	case WriteCreatedContainer:
		return "created_container"
	default:
		return "unknown"
	}
}
