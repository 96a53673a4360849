package normalize

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"workOrderNumber":      "work_order_number",
		"siteId":               "site_id",
		"VIN":                  "vin",
		"VINNumber":            "vin_number",
		"completedOn":          "completed_on",
		"already_snake":        "already_snake",
		"sblu":                 "sblu",
		"vehicleQualification": "vehicle_qualification",
	}
	for in, want := range cases {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFields_OverridesWin(t *testing.T) {
	raw := map[string]any{
		"otherFee":      "12.50",
		"buyerDealerid": "5001234",
		"sellerName":    "ACME",
	}
	overrides := map[string]string{
		"otherFee":      "buyer_adj",
		"buyerDealerid": "buyer_number",
	}

	got := Fields(raw, overrides)
	if got["buyer_adj"] != "12.50" {
		t.Errorf("expected otherFee mapped to buyer_adj, got %v", got)
	}
	if got["buyer_number"] != "5001234" {
		t.Errorf("expected buyerDealerid mapped to buyer_number, got %v", got)
	}
	if got["seller_name"] != "ACME" {
		t.Errorf("expected sellerName snake_cased, got %v", got)
	}
}

func TestRemovedAttributes(t *testing.T) {
	newImage := map[string]any{"keep": 1, "alsoKeep": 2}
	oldImage := map[string]any{"keep": 1, "alsoKeep": 2, "droppedField": 3, "otherFee": 4}

	got := RemovedAttributes(newImage, oldImage, map[string]string{"otherFee": "buyer_adj"})
	sort.Strings(got)
	want := []string{"buyer_adj", "dropped_field"}
	if len(got) != len(want) {
		t.Fatalf("RemovedAttributes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RemovedAttributes = %v, want %v", got, want)
		}
	}
}

func TestCanonicalTimestamp(t *testing.T) {
	t.Run("numeric strings keep precision through truncation", func(t *testing.T) {
		cases := map[string]string{
			"1700000000":        "1700000000",
			"1700000000.1":      "1700000000.1",
			"1700000000.123":    "1700000000.123",
			"1700000000.123999": "1700000000.123",
			"1700000000.100":    "1700000000.1",
			"1700000000.000":    "1700000000",
		}
		for in, want := range cases {
			got, err := CanonicalTimestamp(in)
			if err != nil {
				t.Fatalf("CanonicalTimestamp(%q): %v", in, err)
			}
			if got != want {
				t.Errorf("CanonicalTimestamp(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("json numbers", func(t *testing.T) {
		got, err := CanonicalTimestamp(json.Number("1700000000.5559"))
		if err != nil {
			t.Fatal(err)
		}
		if got != "1700000000.555" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("datetime strings", func(t *testing.T) {
		got, err := CanonicalTimestamp("2023-11-14T22:13:20Z")
		if err != nil {
			t.Fatal(err)
		}
		if got != "1700000000" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := CanonicalTimestamp("not a timestamp"); err == nil {
			t.Fatal("expected error")
		}
		if _, err := CanonicalTimestamp([]any{}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestCompareTimestamps(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1700000000", "1700000000", 0},
		{"1700000000.1", "1700000000.10", 0},
		{"1700000000.1", "1700000000.2", -1},
		{"1700000000.2", "1700000000.1", 1},
		{"1700000000", "1700000001", -1},
		{"999999999", "1000000000", -1},
		{"1700000000", "1700000000.001", -1},
	}
	for _, tc := range cases {
		if got := CompareTimestamps(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareTimestamps(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{json.Number("10"), 10},
		{"12.5", 12.5},
		{"", 0},
		{"  ", 0},
		{"abc", 0},
		{nil, 0},
		{42, 42},
	}
	for _, tc := range cases {
		if got := ToFloat(tc.in); got != tc.want {
			t.Errorf("ToFloat(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMapValue(t *testing.T) {
	m := map[string]any{
		"consignment": map[string]any{
			"referenceId": map[string]any{"workOrderNumber": "123"},
		},
	}
	if got := MapValue(m, "consignment", "referenceId")["workOrderNumber"]; got != "123" {
		t.Errorf("got %v", got)
	}
	if got := MapValue(m, "missing", "path"); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
