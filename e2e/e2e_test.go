package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/balancemkt/app"
	"github.com/kilianp07/balancemkt/config"
	"github.com/kilianp07/balancemkt/core/balancing"
	"github.com/kilianp07/balancemkt/core/factory"
	coremetrics "github.com/kilianp07/balancemkt/core/metrics"
	coremqtt "github.com/kilianp07/balancemkt/core/mqtt"
	"github.com/kilianp07/balancemkt/core/scheduler"
	"github.com/kilianp07/balancemkt/infra/mqtt"
	"github.com/kilianp07/balancemkt/internal/testutil"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// startInflux starts an InfluxDB 2.7 container initialised with the test
// org, bucket and token.
func startInflux(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "8086")
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func subscribeReports(t *testing.T, broker, topic string) (func() []coremqtt.ReportMessage, func()) {
	t.Helper()
	var (
		mu   sync.Mutex
		msgs []coremqtt.ReportMessage
	)
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-sub"))
	tok := cli.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	tok = cli.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
		var msg coremqtt.ReportMessage
		if err := json.Unmarshal(m.Payload(), &msg); err != nil {
			return
		}
		mu.Lock()
		msgs = append(msgs, msg)
		mu.Unlock()
	})
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	get := func() []coremqtt.ReportMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]coremqtt.ReportMessage(nil), msgs...)
	}
	return get, func() { cli.Disconnect(100) }
}

// TestServiceEndToEnd runs the simulated market against real Mosquitto and
// InfluxDB containers and checks that every settled timeslot produced a
// balance report and a settlement point.
func TestServiceEndToEnd(t *testing.T) {
	if testing.Short() || !testutil.DockerAvailable() {
		t.Skip("docker tests disabled")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	broker, cleanup, err := testutil.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	defer cleanup()
	influxURL := startInflux(ctx, t)

	const slots = 4
	cfg := &config.Config{
		Balancing: balancing.DefaultConfig(),
		Scheduler: scheduler.Config{TickMillis: 200, FirstTimeslot: 100, Timeslots: slots},
		MQTT:      mqtt.Config{Broker: broker, ClientID: "e2e-market", TopicPrefix: "e2e", QoS: 1},
		Metrics: coremetrics.Config{Sinks: []factory.ModuleConfig{{
			Type: "influx",
			Conf: map[string]any{"url": influxURL, "token": influxToken, "org": influxOrg, "bucket": influxBucket},
		}}},
		Logging: config.LoggingConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "settlements.db")},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	reports, unsubscribe := subscribeReports(t, broker, coremqtt.ReportTopic("e2e"))
	defer unsubscribe()

	svc, err := app.New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Run(ctx))
	require.NoError(t, svc.Close())

	assert.Eventually(t, func() bool { return len(reports()) == slots }, 5*time.Second, 50*time.Millisecond)
	for i, msg := range reports() {
		assert.Equal(t, 100+i, msg.Timeslot)
		assert.NotEmpty(t, msg.MessageID)
	}

	cli := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	n, err := cli.CountPoints(ctx, "settlement_run", "timeslot")
	require.NoError(t, err)
	assert.Equal(t, slots, n)
}
