package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/balancemkt/config"
	coremon "github.com/kilianp07/balancemkt/core/monitoring"
)

func TestNewSentryMonitor_EmptyDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitor_InvalidDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestSentryMonitor_CaptureWithoutTransport(t *testing.T) {
	// a valid DSN that is never reached: events are queued and dropped
	m, err := NewSentryMonitor(config.SentryConfig{DSN: "https://public@127.0.0.1:1/1", Environment: "test"})
	require.NoError(t, err)
	m.CaptureException(errors.New("settlement model inconsistency"), map[string]string{"module": "settlement"})
	m.CaptureException(nil, nil)
	m.Flush(10 * time.Millisecond)
}
