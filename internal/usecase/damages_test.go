package usecase

import (
	"encoding/json"
	"testing"
)

func TestBuildLabors(t *testing.T) {
	t.Run("one row per labor type with work", func(t *testing.T) {
		record := map[string]any{
			"item":              "Bumper",
			"action":            "Repair",
			"repair_labor_cost": json.Number("100"),
			"paint_labor_hours": json.Number("1.5"),
		}
		labors := buildLabors(record)
		if len(labors) != 2 {
			t.Fatalf("got %d labors", len(labors))
		}
		if labors[0]["damage_labor_type"] != "repair" || labors[1]["damage_labor_type"] != "paint" {
			t.Fatalf("labors = %v", labors)
		}
	})

	t.Run("defaults to a single repair row", func(t *testing.T) {
		labors := buildLabors(map[string]any{"item": "Bumper", "action": "Repair"})
		if len(labors) != 1 || labors[0]["damage_labor_type"] != "repair" {
			t.Fatalf("labors = %v", labors)
		}
	})

	t.Run("hours derived from cost at shop rate", func(t *testing.T) {
		record := map[string]any{
			"item":              "Bumper",
			"action":            "Repair",
			"repair_labor_cost": json.Number("100"),
		}
		labors := buildLabors(record)
		if labors[0]["labor_hours"] != json.Number("2") {
			t.Fatalf("labor_hours = %v", labors[0]["labor_hours"])
		}
		// derived hours are written back onto the damage record
		if record["repair_labor_hours"] != json.Number("2") {
			t.Fatalf("record hours = %v", record["repair_labor_hours"])
		}
	})

	t.Run("paint rows are named after the item", func(t *testing.T) {
		record := map[string]any{
			"item":              "Bumper",
			"action":            "Repair",
			"paint_labor_hours": json.Number("1"),
		}
		labors := buildLabors(record)
		if labors[0]["name"] != "Paint Bumper" {
			t.Fatalf("name = %v", labors[0]["name"])
		}
	})
}

func TestOverallDamageStatus(t *testing.T) {
	t.Run("all completed", func(t *testing.T) {
		record := map[string]any{
			"repair_status":     "COMPLETED",
			"repair_labor_cost": json.Number("100"),
		}
		if got := overallDamageStatus(record); got != "Y" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("pending work with cost", func(t *testing.T) {
		record := map[string]any{
			"repair_status":     "COMPLETED",
			"repair_labor_cost": json.Number("100"),
			"paint_status":      "IN PROGRESS",
			"paint_labor_hours": json.Number("1"),
		}
		if got := overallDamageStatus(record); got != "N" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("pending status without work does not block", func(t *testing.T) {
		record := map[string]any{
			"repair_status": "READY FOR REPAIR",
		}
		if got := overallDamageStatus(record); got != "Y" {
			t.Errorf("got %q", got)
		}
	})
}

func TestDamageISDSA(t *testing.T) {
	record := map[string]any{
		"item_code":     "PA",
		"sub_item_code": "LF",
		"damage_code":   "DENT",
		"severity_code": "MI",
		"action_code":   "REP",
	}
	if got := damageISDSA(record); got != "PA#LF#DENT#MI#REP" {
		t.Errorf("got %q", got)
	}
}
