package entities

// EventKind identifies the upstream change-event family. Dispatch is driven by
// this enum rather than by the raw key names so every consumer shares one
// classification.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindApproval
	KindCapture
	KindCertification
	KindCondition
	KindDetail
	KindOffering
	KindRetailRecon
	KindLaborStatus
	KindWorkCredit
)

func (k EventKind) String() string {
	switch k {
	case KindApproval:
		return "approval"
	case KindCapture:
		return "capture"
	case KindCertification:
		return "certification"
	case KindCondition:
		return "conditions"
	case KindDetail:
		return "detail"
	case KindOffering:
		return "offering"
	case KindRetailRecon:
		return "retail_recon"
	case KindLaborStatus:
		return "labor_status"
	case KindWorkCredit:
		return "workcredit"
	default:
		return "unknown"
	}
}

// Event is the decoded envelope handed over by the transport layer. New and
// Old are plain maps (DynamoDB JSON already unwrapped); numeric leaves arrive
// as json.Number so no precision is lost before canonicalization.
type Event struct {
	Kind        EventKind
	KeyNames    []string
	SourceTable string
	IsDelete    bool
	New         map[string]any
	Old         map[string]any

	// Updated is the event's business timestamp as a canonical fixed-point
	// decimal (epoch seconds). It is the value every guard comparison uses.
	Updated string
}

// laborStatusTable is the upstream table whose items use a pk/sk adjacency
// layout; its key names carry no event identity, so classification falls back
// to the table name.
const laborStatusTable = "rpp-recon-labor-status"

// matcher returns the kind for an event it recognizes. Matchers are evaluated
// in order and the first success wins, which keeps precedence explicit.
type matcher func(ev Event) (EventKind, bool)

func keyMatcher(keyName string, kind EventKind) matcher {
	return func(ev Event) (EventKind, bool) {
		for _, name := range ev.KeyNames {
			if name == keyName {
				return kind, true
			}
		}
		return KindUnknown, false
	}
}

var matchers = []matcher{
	func(ev Event) (EventKind, bool) {
		if hasKey(ev, "pk") && hasKey(ev, "sk") && ev.SourceTable == laborStatusTable {
			return KindLaborStatus, true
		}
		return KindUnknown, false
	},
	func(ev Event) (EventKind, bool) {
		if hasKey(ev, "work_credit_id") && hasKey(ev, "labor") {
			return KindWorkCredit, true
		}
		return KindUnknown, false
	},
	keyMatcher("approval_id", KindApproval),
	keyMatcher("capture_id", KindCapture),
	keyMatcher("certification_id", KindCertification),
	keyMatcher("condition_id", KindCondition),
	keyMatcher("detail_id", KindDetail),
	keyMatcher("offering_id", KindOffering),
	keyMatcher("retailrecon_id", KindRetailRecon),
}

// Classify resolves the event kind from the event's key attribute names (and,
// for adjacency-matrix tables, the source table name). The second return is
// false for unrecognized events; those are skipped, never retried.
func Classify(ev Event) (EventKind, bool) {
	for _, m := range matchers {
		if kind, ok := m(ev); ok {
			return kind, true
		}
	}
	return KindUnknown, false
}

func hasKey(ev Event, name string) bool {
	for _, k := range ev.KeyNames {
		if k == name {
			return true
		}
	}
	return false
}
