package telemetry

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/itohio/joycursor/pkg/calibrate"
	"github.com/itohio/joycursor/pkg/config"
	"github.com/itohio/joycursor/pkg/cursor"
)

const (
	connectTimeout = 5 * time.Second
	quiesceMillis  = 250
)

// Message is the JSON document published for a frame.
type Message struct {
	Time        time.Time          `json:"time"`
	X           int                `json:"x"`
	Y           int                `json:"y"`
	RawX        float64            `json:"raw_x"`
	RawY        float64            `json:"raw_y"`
	Calibration calibrate.Snapshot `json:"calibration"`
}

// NewMessage builds the published document for f.
func NewMessage(f cursor.Frame) Message {
	return Message{
		Time:        f.Time,
		X:           f.Point.X,
		Y:           f.Point.Y,
		RawX:        f.Sample.X,
		RawY:        f.Sample.Y,
		Calibration: f.Calibration,
	}
}

// publisher is the part of mqtt.Client used here.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes frames to a broker at most once per interval.
type MQTT struct {
	client   publisher
	topic    string
	interval time.Duration
	last     time.Time
	log      *logrus.Entry
}

// DialMQTT connects to the configured broker.
func DialMQTT(cfg config.TelemetryConfig) (*MQTT, error) {
	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, pkgerrors.Errorf("timed out connecting to %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to connect to %s", cfg.Broker)
	}

	m := newMQTT(client, cfg.Topic, cfg.Interval)
	m.log.WithField("broker", cfg.Broker).Info("Connected")
	return m, nil
}

func newMQTT(client publisher, topic string, interval time.Duration) *MQTT {
	return &MQTT{
		client:   client,
		topic:    topic,
		interval: interval,
		log:      logrus.WithFields(logrus.Fields{"component": "mqtt", "topic": topic}),
	}
}

// Observe publishes f unless the previous message is younger than the interval.
// Publishing never blocks the caller; failures are logged.
func (m *MQTT) Observe(f cursor.Frame) {
	if !due(m.last, f.Time, m.interval) {
		return
	}
	m.last = f.Time

	payload, err := json.Marshal(NewMessage(f))
	if err != nil {
		m.log.WithError(err).Error("Failed to encode frame")
		return
	}

	token := m.client.Publish(m.topic, 0, false, payload)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			m.log.WithError(err).Warn("Publish failed")
		}
	}()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(quiesceMillis)
}
