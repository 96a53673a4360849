package entities

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		kind EventKind
		ok   bool
	}{
		{
			name: "approval by key name",
			ev:   Event{KeyNames: []string{"approval_id"}},
			kind: KindApproval,
			ok:   true,
		},
		{
			name: "offering by key name",
			ev:   Event{KeyNames: []string{"offering_id"}},
			kind: KindOffering,
			ok:   true,
		},
		{
			name: "labor status needs the source table",
			ev:   Event{KeyNames: []string{"pk", "sk"}, SourceTable: laborStatusTable},
			kind: KindLaborStatus,
			ok:   true,
		},
		{
			name: "pk/sk from another table is not labor status",
			ev:   Event{KeyNames: []string{"pk", "sk"}, SourceTable: "some-other-table"},
			kind: KindUnknown,
			ok:   false,
		},
		{
			name: "work credit needs both key attributes",
			ev:   Event{KeyNames: []string{"work_credit_id", "labor"}},
			kind: KindWorkCredit,
			ok:   true,
		},
		{
			name: "work credit id alone is not enough",
			ev:   Event{KeyNames: []string{"work_credit_id"}},
			kind: KindUnknown,
			ok:   false,
		},
		{
			name: "unrecognized keys",
			ev:   Event{KeyNames: []string{"mystery_id"}},
			kind: KindUnknown,
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := Classify(tc.ev)
			if kind != tc.kind || ok != tc.ok {
				t.Fatalf("Classify = (%v, %v), want (%v, %v)", kind, ok, tc.kind, tc.ok)
			}
		})
	}
}
