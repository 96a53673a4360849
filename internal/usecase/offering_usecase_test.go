package usecase

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
)

func TestHandleOffering(t *testing.T) {
	uc, m := newTestProcessor(t)
	noVehicle(m)

	var entityPlan, summaryPlan entities.WritePlan
	m.store.EXPECT().Apply(gomock.Any(), entities.EntityKey("1234567#AAA", "offering"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ entities.Key, plan entities.WritePlan) (entities.WriteOutcome, error) {
			entityPlan = plan
			return entities.WriteApplied, nil
		})
	m.store.EXPECT().Apply(gomock.Any(), entities.SummaryKey("1234567#AAA"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ entities.Key, plan entities.WritePlan) (entities.WriteOutcome, error) {
			summaryPlan = plan
			return entities.WriteApplied, nil
		})

	ev := entities.Event{
		Kind: entities.KindOffering,
		New: map[string]any{
			"offering_id": "o-1",
			"sblu":        "1234567",
			"site_id":     "AAA",
			"order": map[string]any{
				"otherFee":      "12.50",
				"buyerDealerid": "5001234",
				"buyeRepId":     "rep-9",
				"sellerName":    "ACME",
			},
		},
		Old: map[string]any{
			"order": map[string]any{
				"otherFee":     "12.50",
				"floorPricing": "Y",
			},
		},
		Updated: "1700000000",
	}
	if err := uc.handleOffering(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	// the entity projection is flat under the shared guard
	if entityPlan.Container != "" || entityPlan.GuardAttr != entities.DefaultGuardAttr {
		t.Fatalf("entity plan = %+v", entityPlan)
	}
	if entityPlan.Set["buyer_adj"] != "12.50" || entityPlan.Set["buyer_number"] != "5001234" {
		t.Fatalf("overrides not applied: %v", entityPlan.Set)
	}
	if entityPlan.Set["buyeRepId"] != "rep-9" {
		t.Fatalf("verbatim override lost: %v", entityPlan.Set)
	}
	if entityPlan.Set["offering_id"] != "o-1" {
		t.Fatalf("offering_id missing: %v", entityPlan.Set)
	}

	// the summary projection is nested under its own guard
	if summaryPlan.Container != "offering" || summaryPlan.GuardAttr != "offering_updated" {
		t.Fatalf("summary plan = %+v", summaryPlan)
	}

	// floorPricing disappeared upstream, so it is removed from both
	for _, plan := range []entities.WritePlan{entityPlan, summaryPlan} {
		found := false
		for _, r := range plan.Remove {
			if r == "floor_pricing" {
				found = true
			}
		}
		if !found {
			t.Fatalf("floor_pricing not in removes: %v", plan.Remove)
		}
	}
}

func TestHandleOffering_PFVehiclePayload(t *testing.T) {
	uc, m := newTestProcessor(t)
	noVehicle(m)

	m.store.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(entities.WriteApplied, nil).Times(2)

	ev := entities.Event{
		Kind: entities.KindOffering,
		New: map[string]any{
			"sblu":      "1234567",
			"site_id":   "AAA",
			"pfvehicle": map[string]any{"sellerName": "ACME"},
		},
		Updated: "1700000000",
	}
	if err := uc.handleOffering(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
}

func TestHandleOffering_NoPayloadIsValidationError(t *testing.T) {
	uc, m := newTestProcessor(t)
	noVehicle(m)

	ev := entities.Event{
		Kind:    entities.KindOffering,
		New:     map[string]any{"sblu": "1234567", "site_id": "AAA"},
		Updated: "1700000000",
	}
	// through Handle the validation failure is swallowed
	if err := uc.Handle(context.Background(), ev, nil); err != nil {
		t.Fatal(err)
	}
}
