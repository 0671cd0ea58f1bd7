// Package telemetry publishes loop heartbeats to an MQTT broker.  It builds
// under TinyGo as well as on a host.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/merliot/hello"
	mqtt "github.com/soypat/natiu-mqtt"
)

const (
	dialTimeout  = 4 * time.Second
	writeTimeout = 2 * time.Second
	retryPeriod  = 30 * time.Second
	keepAlive    = 60 // seconds
	bufSize      = 512
)

var (
	errClosed  = errors.New("publisher closed")
	errWaiting = errors.New("waiting to redial")
)

type dialer func(ctx context.Context, addr string) (net.Conn, error)

func dialTCP(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// Publisher implements hello.Publisher.  The broker connection is made on
// first Publish and remade after a failure, but a failed dial is not retried
// for a retry period so an unreachable broker costs at most one connect
// timeout per period.
type Publisher struct {
	mu       mutex
	broker   string
	clientID []byte
	topic    []byte
	client   *mqtt.Client
	conn     net.Conn
	packetID uint16
	dial     dialer
	timeout  time.Duration
	retry    time.Duration
	nextDial time.Time
}

func NewPublisher(broker, clientID, topic string) *Publisher {
	return &Publisher{
		broker:   broker,
		clientID: []byte(clientID),
		topic:    []byte(topic),
		dial:     dialTCP,
		timeout:  dialTimeout,
		retry:    retryPeriod,
	}
}

func newClient() *mqtt.Client {
	return mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, bufSize)},
		OnPub: func(_ mqtt.Header, _ mqtt.VariablesPublish, r io.Reader) error {
			// nothing is subscribed
			_, err := io.Copy(io.Discard, r)
			return err
		},
	})
}

func (p *Publisher) String() string {
	return "mqtt:" + p.broker + "/" + string(p.topic)
}

func (p *Publisher) connected() bool {
	return p.client != nil && p.client.IsConnected()
}

func (p *Publisher) connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	conn, err := p.dial(ctx, p.broker)
	if err != nil {
		return fmt.Errorf("dial %s: %w", p.broker, err)
	}

	// the client only checks ctx between reads
	deadline, _ := ctx.Deadline()
	conn.SetDeadline(deadline)

	var vc mqtt.VariablesConnect
	vc.SetDefaultMQTT(p.clientID)
	vc.KeepAlive = keepAlive

	client := newClient()
	if err := client.Connect(ctx, conn, &vc); err != nil {
		conn.Close()
		return fmt.Errorf("connect %s: %w", p.broker, err)
	}

	conn.SetDeadline(time.Time{})
	p.client, p.conn = client, conn
	return nil
}

// drop forgets the connection without talking to the broker
func (p *Publisher) drop() {
	if p.conn != nil {
		p.conn.Close()
	}
	p.client, p.conn = nil, nil
}

// nextPacketID never returns 0, which the client rejects even at QoS 0
func (p *Publisher) nextPacketID() uint16 {
	p.packetID++
	if p.packetID == 0 {
		p.packetID = 1
	}
	return p.packetID
}

// Publish sends beat as JSON at QoS 0
func (p *Publisher) Publish(beat hello.Beat) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected() {
		if time.Now().Before(p.nextDial) {
			return fmt.Errorf("%s: %w", p.broker, errWaiting)
		}
		if err := p.connect(); err != nil {
			p.nextDial = time.Now().Add(p.retry)
			return err
		}
	}

	payload, err := json.Marshal(&beat)
	if err != nil {
		return fmt.Errorf("marshal heartbeat: %w", err)
	}

	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return err
	}

	vp := mqtt.VariablesPublish{TopicName: p.topic, PacketIdentifier: p.nextPacketID()}
	p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := p.client.PublishPayload(flags, vp, payload); err != nil {
		p.drop()
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}

	return nil
}

// Close drops the broker connection, if any
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected() {
		p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		p.client.Disconnect(errClosed)
	}
	p.drop()
}
