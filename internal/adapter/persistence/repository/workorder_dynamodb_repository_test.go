package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/testsupport/dynamofake"
)

func newTestRepo(t *testing.T) (*WorkOrderDynamoRepository, *dynamofake.Fake) {
	t.Helper()
	fake := dynamofake.New()
	return NewWorkOrderDynamoRepository(fake, zap.NewNop()), fake
}

func summaryPlan(status, guard string) entities.WritePlan {
	return entities.BuildWritePlan(map[string]any{"status": status}, nil, "", "", guard)
}

func TestApply_LastWriterWins(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	key := entities.SummaryKey("1234567#AAA")

	t.Run("first write lands", func(t *testing.T) {
		outcome, err := repo.Apply(ctx, key, summaryPlan("ACTIVE", "100"))
		if err != nil || outcome != entities.WriteApplied {
			t.Fatalf("outcome=%v err=%v", outcome, err)
		}
	})

	t.Run("older write is rejected without error", func(t *testing.T) {
		outcome, err := repo.Apply(ctx, key, summaryPlan("CANCELLED", "50"))
		if err != nil {
			t.Fatalf("stale write must not error: %v", err)
		}
		if outcome != entities.WriteSkippedStale {
			t.Fatalf("outcome=%v", outcome)
		}
		got, err := repo.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if got["status"] != "ACTIVE" {
			t.Fatalf("stale write changed the record: %v", got)
		}
	})

	t.Run("newer write lands", func(t *testing.T) {
		outcome, err := repo.Apply(ctx, key, summaryPlan("CANCELLED", "150"))
		if err != nil || outcome != entities.WriteApplied {
			t.Fatalf("outcome=%v err=%v", outcome, err)
		}
		got, _ := repo.Get(ctx, key)
		if got["status"] != "CANCELLED" || got["updated"] != json.Number("150") {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("replay of the same write is a no-op that succeeds", func(t *testing.T) {
		outcome, err := repo.Apply(ctx, key, summaryPlan("CANCELLED", "150"))
		if err != nil || outcome != entities.WriteApplied {
			t.Fatalf("outcome=%v err=%v", outcome, err)
		}
	})
}

// A per-type guarded write also sets the shared "updated" attribute. It must
// land as type N: a string there makes every later numeric guard comparison
// on the same record evaluate false, silently dropping newer writes.
func TestApply_SharedGuardStaysNumericAcrossGuardAttrs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	key := entities.Key{PK: "workorder:1234567#AAA", SK: "damage:PA#LF#DENT#MI#REP"}

	if _, err := repo.Apply(ctx, key, entities.BuildWritePlan(
		map[string]any{"damage_status": "APPROVED"}, nil, "", entities.DefaultGuardAttr, "100",
	)); err != nil {
		t.Fatal(err)
	}

	laborStatus := entities.BuildWritePlan(
		map[string]any{
			"repair_status": "COMPLETED",
			"updated":       json.Number("150"),
		}, nil, "", "repair_updated", "150",
	)
	if outcome, err := repo.Apply(ctx, key, laborStatus); err != nil || outcome != entities.WriteApplied {
		t.Fatalf("outcome=%v err=%v", outcome, err)
	}

	newer := entities.BuildWritePlan(
		map[string]any{"damage_status": "REAPPROVED"}, nil, "", entities.DefaultGuardAttr, "200",
	)
	outcome, err := repo.Apply(ctx, key, newer)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != entities.WriteApplied {
		t.Fatalf("newer damage write lost after labor status touched the record: %v", outcome)
	}
	got, _ := repo.Get(ctx, key)
	if got["damage_status"] != "REAPPROVED" || got["updated"] != json.Number("200") {
		t.Fatalf("got %v", got)
	}
}

// Upstream task rows keep raw field names, so two distinct attributes can
// sanitize to the same expression placeholder. Both must survive the write.
func TestApply_CollidingPlaceholderNames(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	key := entities.Key{PK: "workorder:1234567#AAA", SK: "active_task:approve#2024-01-05T11:00:00Z"}

	plan := entities.BuildWritePlan(
		map[string]any{"mod-user": "jdoe", "mod_user": "asmith"}, nil, "", entities.DefaultGuardAttr, "100",
	)
	if outcome, err := repo.Apply(ctx, key, plan); err != nil || outcome != entities.WriteApplied {
		t.Fatalf("outcome=%v err=%v", outcome, err)
	}

	got, err := repo.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got["mod-user"] != "jdoe" || got["mod_user"] != "asmith" {
		t.Fatalf("got %v", got)
	}
}

func TestApply_RemoveAttribute(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	key := entities.EntityKey("1234567#AAA", "offering")

	if _, err := repo.Apply(ctx, key, entities.BuildWritePlan(
		map[string]any{"buyer_adj": "12.50", "seller_name": "ACME"}, nil, "", "", "100")); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Apply(ctx, key, entities.BuildWritePlan(
		map[string]any{"seller_name": "ACME"}, []string{"buyer_adj"}, "", "", "200")); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got["buyer_adj"]; ok {
		t.Fatalf("buyer_adj should be removed: %v", got)
	}
	if got["seller_name"] != "ACME" {
		t.Fatalf("got %v", got)
	}
}

func TestApply_NestedContainer(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	key := entities.SummaryKey("1234567#AAA")

	// the summary row exists without an offering container yet
	if _, err := repo.Apply(ctx, key, summaryPlan("ACTIVE", "100")); err != nil {
		t.Fatal(err)
	}

	t.Run("missing container falls back to whole-map create", func(t *testing.T) {
		plan := entities.BuildWritePlan(map[string]any{"buyer_adj": "12.50"}, nil, "offering", "offering_updated", "100")
		outcome, err := repo.Apply(ctx, key, plan)
		if err != nil {
			t.Fatal(err)
		}
		if outcome != entities.WriteCreatedContainer {
			t.Fatalf("outcome=%v", outcome)
		}
	})

	t.Run("later nested merge keeps sibling fields", func(t *testing.T) {
		plan := entities.BuildWritePlan(map[string]any{"seller_name": "ACME"}, nil, "offering", "offering_updated", "200")
		outcome, err := repo.Apply(ctx, key, plan)
		if err != nil || outcome != entities.WriteApplied {
			t.Fatalf("outcome=%v err=%v", outcome, err)
		}

		got, _ := repo.Get(ctx, key)
		offering, ok := got["offering"].(map[string]any)
		if !ok {
			t.Fatalf("offering container missing: %v", got)
		}
		if offering["buyer_adj"] != "12.50" || offering["seller_name"] != "ACME" {
			t.Fatalf("offering = %v", offering)
		}
		if got["status"] != "ACTIVE" {
			t.Fatalf("summary fields clobbered: %v", got)
		}
	})

	t.Run("nested remove sentinel deletes inside the container", func(t *testing.T) {
		plan := entities.BuildWritePlan(map[string]any{"buyer_adj": entities.RemoveSentinel}, nil, "offering", "offering_updated", "300")
		if _, err := repo.Apply(ctx, key, plan); err != nil {
			t.Fatal(err)
		}
		got, _ := repo.Get(ctx, key)
		offering := got["offering"].(map[string]any)
		if _, ok := offering["buyer_adj"]; ok {
			t.Fatalf("buyer_adj should be removed: %v", offering)
		}
	})
}

func TestApply_Throttled(t *testing.T) {
	repo, fake := newTestRepo(t)
	fake.NextErr = &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}

	_, err := repo.Apply(context.Background(), entities.SummaryKey("1234567#AAA"), summaryPlan("ACTIVE", "100"))
	if !errors.Is(err, entities.ErrStoreThrottled) {
		t.Fatalf("expected ErrStoreThrottled, got %v", err)
	}
}

func TestGet_AbsentReturnsNil(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.Get(context.Background(), entities.SummaryKey("nope#AAA"))
	if err != nil || got != nil {
		t.Fatalf("got %v err %v", got, err)
	}
}

func TestDelete(t *testing.T) {
	repo, fake := newTestRepo(t)
	ctx := context.Background()
	key := entities.EntityKey("1234567#AAA", "retail_recon")

	t.Run("missing record reports not found", func(t *testing.T) {
		err := repo.Delete(ctx, key)
		if !errors.Is(err, entities.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("existing record is removed", func(t *testing.T) {
		fake.Seed(key.PK, key.SK, nil)
		if err := repo.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}
		if fake.Item(key.PK, key.SK) != nil {
			t.Fatal("record still present")
		}
	})
}

func TestQueryPrefix(t *testing.T) {
	repo, fake := newTestRepo(t)
	pk := "workorder:1234567#AAA"
	fake.Seed(pk, "fee#1", map[string]types.AttributeValue{
		"total_estimate": &types.AttributeValueMemberS{Value: "10"},
	})
	fake.Seed(pk, "fee#2", map[string]types.AttributeValue{
		"total_estimate": &types.AttributeValueMemberS{Value: "20"},
	})
	fake.Seed(pk, "labor#1", nil)
	fake.Seed("workorder:other#AAA", "fee#1", nil)

	got, err := repo.QueryPrefix(context.Background(), pk, "fee#")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows", len(got))
	}
	if got[0]["sk"] != "fee#1" || got[1]["sk"] != "fee#2" {
		t.Fatalf("rows out of order: %v", got)
	}
}

func TestFindByWorkOrderNumber(t *testing.T) {
	repo, fake := newTestRepo(t)
	fake.Seed("workorder:1234567#AAA", "workorder:1234567#AAA", map[string]types.AttributeValue{
		"work_order_number": &types.AttributeValueMemberS{Value: "987"},
		"site_id":           &types.AttributeValueMemberS{Value: "AAA"},
		"sblu":              &types.AttributeValueMemberS{Value: "1234567"},
	})
	fake.Seed("workorder:7654321#AAA", "workorder:7654321#AAA", map[string]types.AttributeValue{
		"work_order_number": &types.AttributeValueMemberS{Value: "111"},
		"site_id":           &types.AttributeValueMemberS{Value: "AAA"},
	})

	got, err := repo.FindByWorkOrderNumber(context.Background(), "987", "AAA")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0]["sblu"] != "1234567" {
		t.Fatalf("got %v", got)
	}
	if got[0]["pk"] != "workorder:1234567#AAA" {
		t.Fatalf("identity fields missing: %v", got[0])
	}
}
