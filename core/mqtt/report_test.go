package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/balancemkt/core/model"
)

func TestReportMessageJSON(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	msg := NewReportMessage("id-1", model.BalanceReport{Timeslot: 12, NetImbalanceKWh: -14}, now)
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_id":"id-1","timeslot":12,"net_imbalance_kwh":-14,"timestamp":1700000000123}`, string(data))

	var back ReportMessage
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, model.BalanceReport{Timeslot: 12, NetImbalanceKWh: -14}, back.Report())
}

func TestReportTopic(t *testing.T) {
	tests := map[string]string{
		"":                  "report",
		"market":            "market/report",
		"market/balancing/": "market/balancing/report",
	}
	for prefix, want := range tests {
		assert.Equal(t, want, ReportTopic(prefix), prefix)
	}
}
