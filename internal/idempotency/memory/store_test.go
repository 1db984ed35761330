package memory_test

import (
	"context"
	"testing"

	"github.com/dejobratic/storefront/internal/idempotency/memory"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get on unknown key returns nil without error", func(t *testing.T) {
		store := memory.NewStore()

		resp, err := store.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp != nil {
			t.Errorf("expected nil response, got %+v", resp)
		}
	})

	t.Run("save then get replays the stored response", func(t *testing.T) {
		store := memory.NewStore()
		saved := ports.StoredResponse{StatusCode: 201, Body: []byte(`{"order":{}}`), OrderID: "ord-1"}

		if err := store.Save(ctx, "key-1", saved); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		resp, err := store.Get(ctx, "key-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if resp == nil {
			t.Fatal("expected stored response, got nil")
		}
		if resp.StatusCode != 201 || resp.OrderID != "ord-1" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("first writer wins on duplicate saves", func(t *testing.T) {
		store := memory.NewStore()

		first := ports.StoredResponse{StatusCode: 201, OrderID: "ord-1"}
		second := ports.StoredResponse{StatusCode: 500, OrderID: "ord-2"}

		if err := store.Save(ctx, "key-1", first); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := store.Save(ctx, "key-1", second); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		resp, _ := store.Get(ctx, "key-1")
		if resp.OrderID != "ord-1" {
			t.Errorf("expected original response preserved, got %+v", resp)
		}
	})
}
