// Package mqtt defines the wire format of balance reports published on the
// message bus. Transport lives in infra/mqtt.
package mqtt

import (
	"errors"
	"strings"
	"time"

	"github.com/kilianp07/balancemkt/core/model"
)

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("mqtt client not connected")

// ReportMessage is the JSON payload of one balance report.
type ReportMessage struct {
	MessageID       string  `json:"message_id"`
	Timeslot        int     `json:"timeslot"`
	NetImbalanceKWh float64 `json:"net_imbalance_kwh"`
	// Timestamp in unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// NewReportMessage wraps a report for publication.
func NewReportMessage(id string, r model.BalanceReport, now time.Time) ReportMessage {
	return ReportMessage{
		MessageID:       id,
		Timeslot:        r.Timeslot,
		NetImbalanceKWh: r.NetImbalanceKWh,
		Timestamp:       now.UnixMilli(),
	}
}

// Report converts the message back into the domain type.
func (m ReportMessage) Report() model.BalanceReport {
	return model.BalanceReport{Timeslot: m.Timeslot, NetImbalanceKWh: m.NetImbalanceKWh}
}

// ReportTopic returns the topic reports are published on for a prefix.
func ReportTopic(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return "report"
	}
	return prefix + "/report"
}
