package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/balancemkt/core/model"
	"github.com/kilianp07/balancemkt/core/monitoring"
	coremqtt "github.com/kilianp07/balancemkt/core/mqtt"
	"github.com/kilianp07/balancemkt/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	AuthMethod  string      `json:"auth_method"`
	LWTTopic    string      `json:"lwt_topic"`
	LWTPayload  string      `json:"lwt_payload"`
	LWTQoS      byte        `json:"lwt_qos"`
	LWTRetain   bool        `json:"lwt_retain"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "balancemkt"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "balancing"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Broker == "" {
		return errors.New("broker is required")
	}
	if c.QoS > 2 || c.LWTQoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2")
	}
	switch c.AuthMethod {
	case "", "username_password", "certificate", "both":
	default:
		return fmt.Errorf("unknown auth_method %q", c.AuthMethod)
	}
	if c.MaxRetries < 0 || c.BackoffMS < 0 {
		return errors.New("max_retries and backoff_ms must not be negative")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// PahoReporter publishes balance reports to the broker. It implements
// balancing.ReportChannel.
type PahoReporter struct {
	cli        pahoClient
	topic      string
	qos        byte
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoReporter connects to the MQTT broker.
func NewPahoReporter(cfg Config) (*PahoReporter, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_reporter")
	r := &PahoReporter{
		topic:      coremqtt.ReportTopic(cfg.TopicPrefix),
		qos:        cfg.QoS,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		now:        time.Now,
	}

	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected, reports go to %s", r.topic)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	r.cli = c
	return r, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS || cfg.AuthMethod == "certificate" {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("no certificates in %s", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// Topic returns the report topic.
func (r *PahoReporter) Topic() string { return r.topic }

// BroadcastReport publishes the report, retrying with exponential backoff.
// Cancelling ctx stops the retries.
func (r *PahoReporter) BroadcastReport(ctx context.Context, report model.BalanceReport) error {
	if r.cli == nil || !r.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	msg := coremqtt.NewReportMessage(uuid.NewString(), report, r.now())
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var publishErr error
retry:
	for attempt := 0; ; attempt++ {
		token := r.cli.Publish(r.topic, r.qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			r.logger.Debugf("sent report %s for timeslot %d", msg.MessageID, report.Timeslot)
			return nil
		}
		r.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt >= r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			publishErr = errors.Join(publishErr, ctx.Err())
			break retry
		case <-time.After(r.backoff * time.Duration(1<<attempt)):
		}
	}
	err = fmt.Errorf("publish report for timeslot %d: %w", report.Timeslot, publishErr)
	monitoring.CaptureException(err, map[string]string{
		"module":   "mqtt",
		"topic":    r.topic,
		"timeslot": fmt.Sprint(report.Timeslot),
	})
	return err
}

// Disconnect gracefully closes the MQTT connection.
func (r *PahoReporter) Disconnect() {
	if r.cli != nil && r.cli.IsConnected() {
		r.cli.Disconnect(250)
	}
}
