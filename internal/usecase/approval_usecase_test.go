package usecase

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
)

func damagePayload(item string) map[string]any {
	return map[string]any{
		"itemCode":     item,
		"subItemCode":  "LF",
		"damageCode":   "DENT",
		"severityCode": "MI",
		"actionCode":   "REP",
		"item":         "Bumper",
		"action":       "Repair",
		"approved":     true,
	}
}

func damageSKFor(item string) string {
	return "damage:" + item + "#LF#DENT#MI#REP"
}

func TestHandleApproval_DamageDiff(t *testing.T) {
	uc, m := newTestProcessor(t)
	noVehicle(m)
	m.laborStatus.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, false, nil).AnyTimes()
	// no labor-status records linked to these damages
	m.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	ev := entities.Event{
		Kind: entities.KindApproval,
		New: map[string]any{
			"sblu":    "1234567",
			"site_id": "AAA",
			"order": map[string]any{
				"updatedOn": "1700000000",
				"updatedBy": "jdoe",
				"condition": map[string]any{
					"damages": []any{damagePayload("DR"), damagePayload("FE")},
				},
			},
		},
		Old: map[string]any{
			"order": map[string]any{
				"condition": map[string]any{
					"damages": []any{damagePayload("PA"), damagePayload("DR")},
				},
			},
		},
		Updated: "1700000000",
	}

	// stored child records for the old set
	m.store.EXPECT().QueryPrefix(gomock.Any(), testPK, entities.DamageSKPrefix).Return([]map[string]any{
		{"sk": damageSKFor("PA"), "sub_item_code": "LF"},
		{"sk": damageSKFor("DR"), "sub_item_code": "LF"},
	}, nil)

	// summary recompute reads
	m.store.EXPECT().QueryPrefix(gomock.Any(), testPK, entities.FeeSKPrefix).Return(nil, nil).AnyTimes()
	m.store.EXPECT().QueryPrefix(gomock.Any(), testPK, entities.LaborSKPrefix).Return(nil, nil).AnyTimes()
	m.store.EXPECT().QueryPrefix(gomock.Any(), testPK, entities.PartSKPrefix).Return(nil, nil).AnyTimes()

	// approval entity record
	m.store.EXPECT().Apply(gomock.Any(), entities.EntityKey("1234567#AAA", "approval"), gomock.Any()).
		Return(entities.WriteApplied, nil)

	// PA left the approved set: its child record goes away
	m.store.EXPECT().Delete(gomock.Any(), entities.Key{PK: testPK, SK: damageSKFor("PA")}).Return(nil)

	// DR stays (update in place), FE is new
	m.store.EXPECT().Apply(gomock.Any(), entities.Key{PK: testPK, SK: damageSKFor("DR")}, gomock.Any()).
		Return(entities.WriteApplied, nil)
	m.store.EXPECT().Apply(gomock.Any(), entities.Key{PK: testPK, SK: damageSKFor("FE")}, gomock.Any()).
		Return(entities.WriteApplied, nil)

	// append-only snapshot keyed by the approval completion timestamp
	var snapshot entities.WritePlan
	m.store.EXPECT().Apply(gomock.Any(), entities.ApproveSummaryKey("1234567#AAA", "1700000000"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ entities.Key, plan entities.WritePlan) (entities.WriteOutcome, error) {
			snapshot = plan
			return entities.WriteApplied, nil
		})

	if err := uc.handleApproval(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if snapshot.Set["completeTimestamp"] != "1700000000" || snapshot.Set["approverUserName"] != "jdoe" {
		t.Fatalf("snapshot = %v", snapshot.Set)
	}
	if snapshot.Set["reconFee"] != "0" || snapshot.Set["labor"] != "0" || snapshot.Set["parts"] != "0" {
		t.Fatalf("snapshot totals = %v", snapshot.Set)
	}
}

func TestMaterialChange(t *testing.T) {
	newImage := map[string]any{
		"order": map[string]any{
			"condition": map[string]any{
				"damages": []any{damagePayload("PA")},
			},
		},
	}

	t.Run("no old image counts as change", func(t *testing.T) {
		if !materialChange(newImage, nil) {
			t.Fatal("expected change")
		}
	})

	t.Run("same damage set is no change", func(t *testing.T) {
		if materialChange(newImage, newImage) {
			t.Fatal("expected no change")
		}
	})

	t.Run("approval flip is a change", func(t *testing.T) {
		unapproved := damagePayload("PA")
		unapproved["approved"] = false
		oldImage := map[string]any{
			"order": map[string]any{
				"condition": map[string]any{
					"damages": []any{unapproved},
				},
			},
		}
		if !materialChange(newImage, oldImage) {
			t.Fatal("expected change")
		}
	})
}
