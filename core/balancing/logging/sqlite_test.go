package logging

import (
	"context"
	"testing"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:settlement_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	for slot := 1; slot <= 2; slot++ {
		rec, err := settledRecord("run-sqlite", slot)
		if err != nil {
			t.Fatalf("settle: %v", err)
		}
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out, err := store.Query(context.Background(), LogQuery{RunID: "run-sqlite", FromSlot: 2, BrokerID: "b1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if out[0].Outputs[0].P1 == 0 {
		t.Fatalf("expected outputs to survive the round trip")
	}
	none, err := store.Query(context.Background(), LogQuery{BrokerID: "b9"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no records for unknown broker")
	}
}
