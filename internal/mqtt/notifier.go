package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/nugget/credo-bot/internal/config"
	"github.com/nugget/credo-bot/internal/outcome"
)

const defaultConnectTimeout = 15 * time.Second

// message is one retained publish.
type message struct {
	topic   string
	payload []byte
}

// Notifier publishes run summaries.
type Notifier struct {
	cfg            config.MQTTConfig
	instanceID     string
	device         DeviceInfo
	logger         *slog.Logger
	connectTimeout time.Duration
}

// New returns a Notifier. instanceID identifies this installation in
// discovery payloads; see [LoadOrCreateInstanceID].
func New(cfg config.MQTTConfig, instanceID string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		cfg:            cfg,
		instanceID:     instanceID,
		device:         NewDeviceInfo(instanceID, cfg.DeviceName),
		logger:         logger,
		connectTimeout: defaultConnectTimeout,
	}
}

func (n *Notifier) baseTopic() string {
	return strings.TrimSuffix(n.cfg.TopicPrefix, "/")
}

// LastRunTopic is where the retained summary goes.
func (n *Notifier) LastRunTopic() string {
	return n.baseTopic() + "/last_run"
}

func (n *Notifier) discoveryTopic(entity string) string {
	return n.cfg.DiscoveryPrefix + "/sensor/" + n.instanceID + "/" + entity + "/config"
}

func (n *Notifier) sensorDefinitions() map[string]SensorConfig {
	state := n.LastRunTopic()
	return map[string]SensorConfig{
		"last_run": {
			Name:                n.device.Name + " Last Run",
			UniqueID:            n.instanceID + "_last_run",
			StateTopic:          state,
			JSONAttributesTopic: state,
			ValueTemplate:       "{{ value_json.status }}",
			Device:              n.device,
			Icon:                "mdi:message-check",
		},
		"last_run_at": {
			Name:           n.device.Name + " Last Run At",
			UniqueID:       n.instanceID + "_last_run_at",
			StateTopic:     state,
			ValueTemplate:  "{{ value_json.finished_at }}",
			Device:         n.device,
			DeviceClass:    "timestamp",
			EntityCategory: "diagnostic",
		},
	}
}

// messages builds everything one Publish sends, discovery first.
func (n *Notifier) messages(s outcome.Summary) ([]message, error) {
	var out []message
	if n.cfg.DiscoveryPrefix != "" {
		defs := n.sensorDefinitions()
		for _, entity := range []string{"last_run", "last_run_at"} {
			payload, err := json.Marshal(defs[entity])
			if err != nil {
				return nil, fmt.Errorf("marshal discovery for %s: %w", entity, err)
			}
			out = append(out, message{topic: n.discoveryTopic(entity), payload: payload})
		}
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return append(out, message{topic: n.LastRunTopic(), payload: payload}), nil
}

// Publish connects, sends the summary retained with QoS 1 and
// disconnects. The run has already finished, so callers normally log a
// failure here rather than change the exit status.
func (n *Notifier) Publish(ctx context.Context, s outcome.Summary) error {
	msgs, err := n.messages(s)
	if err != nil {
		return err
	}

	brokerURL, err := url.Parse(n.cfg.Broker)
	if err != nil {
		return fmt.Errorf("parse mqtt broker URL: %w", err)
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: n.cfg.Username,
		ConnectPassword: []byte(n.cfg.Password),
		OnConnectionUp: func(_ *autopaho.ConnectionManager, _ *paho.Connack) {
			n.logger.Debug("mqtt connected to broker", "broker", n.cfg.Broker)
		},
		OnConnectError: func(err error) {
			n.logger.Debug("mqtt connection error", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: n.cfg.ClientID,
		},
	}
	if brokerURL.Scheme == "mqtts" || brokerURL.Scheme == "ssl" {
		pahoCfg.TlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cm, err := autopaho.NewConnection(connCtx, pahoCfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	defer func() {
		cancel()
		<-cm.Done()
	}()

	awaitCtx, awaitCancel := context.WithTimeout(connCtx, n.connectTimeout)
	defer awaitCancel()
	if err := cm.AwaitConnection(awaitCtx); err != nil {
		return fmt.Errorf("mqtt broker %s unreachable: %w", n.cfg.Broker, err)
	}

	for _, m := range msgs {
		if _, err := cm.Publish(connCtx, &paho.Publish{
			Topic:   m.topic,
			Payload: m.payload,
			QoS:     1,
			Retain:  true,
		}); err != nil {
			return fmt.Errorf("publish %s: %w", m.topic, err)
		}
	}
	n.logger.Info("run summary published", "topic", n.LastRunTopic(), "status", s.Status)

	if err := cm.Disconnect(connCtx); err != nil {
		n.logger.Debug("mqtt disconnect", "error", err)
	}
	return nil
}
