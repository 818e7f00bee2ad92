package model

import "testing"

func TestBalancingOrderValidate(t *testing.T) {
	cases := []struct {
		name    string
		order   BalancingOrder
		wantErr bool
	}{
		{"up", BalancingOrder{ID: "o1", BrokerID: "b1", ExerciseRatio: 0.6, Price: 0.03}, false},
		{"storage", BalancingOrder{ID: "o2", BrokerID: "b1", ExerciseRatio: 2, Price: 0.03}, false},
		{"down", BalancingOrder{ID: "o3", BrokerID: "b1", ExerciseRatio: -1, Price: -0.01}, false},
		{"no broker", BalancingOrder{ID: "o4", ExerciseRatio: 0.5}, true},
		{"ratio too high", BalancingOrder{ID: "o5", BrokerID: "b1", ExerciseRatio: 2.1}, true},
		{"ratio too low", BalancingOrder{ID: "o6", BrokerID: "b1", ExerciseRatio: -1.5}, true},
		{"zero ratio", BalancingOrder{ID: "o7", BrokerID: "b1"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.order.Validate()
			if c.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBalancingOrderDirection(t *testing.T) {
	if d := (BalancingOrder{ExerciseRatio: 1.5}).Direction(); d != DirectionUp {
		t.Fatalf("expected up got %s", d)
	}
	if d := (BalancingOrder{ExerciseRatio: -0.2}).Direction(); d != DirectionDown {
		t.Fatalf("expected down got %s", d)
	}
	if d := (BalancingOrder{}).Direction(); d != DirectionNone {
		t.Fatalf("expected none got %s", d)
	}
}

func TestBrokerName(t *testing.T) {
	if n := (Broker{ID: "b1"}).Name(); n != "b1" {
		t.Fatalf("expected id fallback got %s", n)
	}
	if n := (Broker{ID: "b1", Username: "alice"}).Name(); n != "alice" {
		t.Fatalf("expected username got %s", n)
	}
}
