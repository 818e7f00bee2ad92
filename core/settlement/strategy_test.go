package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindStatic, false},
		{"static", KindStatic, false},
		{" Static ", KindStatic, false},
		{"dynamic", KindDynamic, false},
		{"StaticSettlementProcessor", KindStatic, true},
		{"annealing", KindStatic, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy(KindStatic, newFakeControl(), nil)
	require.NoError(t, err)
	assert.IsType(t, &StaticEngine{}, s)

	s, err = NewStrategy(KindDynamic, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &DynamicEngine{}, s)

	_, err = NewStrategy(Kind(7), nil, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "kind(7)", Kind(7).String())
}

func TestDynamicEngine_LeavesChargesUntouched(t *testing.T) {
	f := newFixture(-10, 5)
	err := NewDynamicEngine(nil).Settle(defaultPrices, f.charges)
	assert.ErrorIs(t, err, ErrNotImplemented)
	for _, ci := range f.charges {
		assert.Zero(t, ci.BalanceCharge())
	}
}
