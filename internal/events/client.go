package events

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the transport the events module publishes through.
type Publisher interface {
	Publish(topic string, retained bool, payload []byte) error
	Close()
}

// PahoOptions configures the MQTT publisher connection.
type PahoOptions struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Timeout   time.Duration
}

type pahoPublisher struct {
	client  paho.Client
	timeout time.Duration
}

// NewPahoPublisher connects a paho client for state publishing. The broker is
// on the local trust boundary, so there is no TLS here.
func NewPahoPublisher(opts PahoOptions) (Publisher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.ClientID == "" {
		opts.ClientID = "musicd"
	}

	clientOpts := paho.NewClientOptions().AddBroker(opts.BrokerURL)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetConnectTimeout(opts.Timeout)
	clientOpts.SetAutoReconnect(true)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
		clientOpts.SetPassword(opts.Password)
	}

	client := paho.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect broker: %w", token.Error())
	}
	return &pahoPublisher{client: client, timeout: opts.Timeout}, nil
}

func (p *pahoPublisher) Publish(topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	return token.Error()
}

func (p *pahoPublisher) Close() {
	p.client.Disconnect(250)
}
