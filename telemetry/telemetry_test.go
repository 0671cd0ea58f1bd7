package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/merliot/hello"
)

type packet struct {
	kind byte // high nibble of the fixed header
	body []byte
}

func readPacket(r io.Reader) (packet, error) {
	var hdr [1]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return packet{}, err
	}
	length, mult := 0, 1
	for {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return packet{}, err
		}
		length += int(b[0]&0x7f) * mult
		if b[0]&0x80 == 0 {
			break
		}
		mult *= 128
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return packet{}, err
	}
	return packet{kind: hdr[0] >> 4, body: body}, nil
}

// fakeBroker acks CONNECT and hands every other packet to the test
func fakeBroker(conn net.Conn, packets chan<- packet) {
	defer close(packets)
	for {
		pkt, err := readPacket(conn)
		if err != nil {
			return
		}
		if pkt.kind == 1 {
			// CONNACK, session not present, accepted
			if _, err := conn.Write([]byte{0x20, 0x02, 0x00, 0x00}); err != nil {
				return
			}
			continue
		}
		packets <- pkt
	}
}

// brokerDialer hands out a fresh fake broker per dial; each broker's packets
// arrive on the channel sent to brokers
func brokerDialer(c *qt.C) (dialer, chan chan packet) {
	brokers := make(chan chan packet, 10)
	return func(ctx context.Context, addr string) (net.Conn, error) {
		c.Check(addr, qt.Equals, "broker:1883")
		packets := make(chan packet, 10)
		client, server := net.Pipe()
		go fakeBroker(server, packets)
		brokers <- packets
		return client, nil
	}, brokers
}

// silentBroker accepts the connection and reads everything, but never
// answers
func silentBroker(ctx context.Context, addr string) (net.Conn, error) {
	client, server := net.Pipe()
	go io.Copy(io.Discard, server)
	return client, nil
}

func nextPacket(c *qt.C, packets chan packet) packet {
	select {
	case pkt := <-packets:
		return pkt
	case <-time.After(5 * time.Second):
		c.Fatal("no packet")
	}
	return packet{}
}

func assertHeartbeat(c *qt.C, pkt packet, want hello.Beat) {
	c.Assert(pkt.kind, qt.Equals, byte(3))
	topicLen := int(pkt.body[0])<<8 | int(pkt.body[1])
	c.Assert(string(pkt.body[2:2+topicLen]), qt.Equals, "hello/esp32/heartbeat")
	var got hello.Beat
	c.Assert(json.Unmarshal(pkt.body[2+topicLen:], &got), qt.IsNil)
	c.Assert(got, qt.Equals, want)
}

func TestPublish(t *testing.T) {
	c := qt.New(t)
	p := NewPublisher("broker:1883", "hello-esp32", "hello/esp32/heartbeat")
	dial, brokers := brokerDialer(c)
	p.dial = dial

	beat1 := hello.Beat{Chip: "esp32", Counter: 7, Heap: 1024, Ms: 7000}
	beat2 := hello.Beat{Chip: "esp32", Counter: 8, Heap: 1024, Ms: 8000}
	c.Assert(p.Publish(beat1), qt.IsNil)
	c.Assert(p.Publish(beat2), qt.IsNil)

	packets := <-brokers
	assertHeartbeat(c, nextPacket(c, packets), beat1)
	assertHeartbeat(c, nextPacket(c, packets), beat2)
	c.Assert(brokers, qt.HasLen, 0)

	p.Close()
}

func TestPacketIDSkipsZero(t *testing.T) {
	c := qt.New(t)
	p := NewPublisher("broker:1883", "id", "topic")
	p.packetID = 0xffff
	c.Assert(p.nextPacketID(), qt.Equals, uint16(1))
	c.Assert(p.nextPacketID(), qt.Equals, uint16(2))
}

func TestSilentBrokerTimesOut(t *testing.T) {
	c := qt.New(t)
	p := NewPublisher("broker:1883", "hello-esp32", "hello/esp32/heartbeat")
	p.dial = silentBroker
	p.timeout = 200 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- p.Publish(hello.Beat{}) }()

	select {
	case err := <-done:
		c.Assert(err, qt.ErrorMatches, "connect broker:1883: .*")
	case <-time.After(3 * time.Second):
		c.Fatal("Publish blocked on a silent broker")
	}
}

func TestReconnectAfterFailure(t *testing.T) {
	c := qt.New(t)
	p := NewPublisher("broker:1883", "hello-esp32", "hello/esp32/heartbeat")
	p.timeout = 200 * time.Millisecond
	p.retry = 0

	good, brokers := brokerDialer(c)
	p.dial = silentBroker
	c.Assert(p.Publish(hello.Beat{}), qt.Not(qt.IsNil))

	p.dial = good
	beat := hello.Beat{Chip: "esp32", Counter: 2, Heap: 64, Ms: 1000}
	c.Assert(p.Publish(beat), qt.IsNil)
	assertHeartbeat(c, nextPacket(c, <-brokers), beat)

	p.Close()
}

func TestRedialBackoff(t *testing.T) {
	c := qt.New(t)
	p := NewPublisher("broker:1883", "hello-esp32", "hello/esp32/heartbeat")
	dials := 0
	p.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	c.Assert(p.Publish(hello.Beat{}), qt.ErrorMatches, "dial broker:1883: connection refused")
	err := p.Publish(hello.Beat{})
	c.Assert(errors.Is(err, errWaiting), qt.IsTrue)
	c.Assert(dials, qt.Equals, 1)

	p.nextDial = time.Time{}
	c.Assert(p.Publish(hello.Beat{}), qt.Not(qt.IsNil))
	c.Assert(dials, qt.Equals, 2)
}

func TestPublishDialError(t *testing.T) {
	c := qt.New(t)
	p := NewPublisher("broker:1883", "hello-esp32", "hello/esp32/heartbeat")
	p.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}
	err := p.Publish(hello.Beat{})
	c.Assert(err, qt.ErrorMatches, "dial broker:1883: connection refused")
}

func TestString(t *testing.T) {
	p := NewPublisher("broker:1883", "id", "hello/esp32/heartbeat")
	qt.Assert(t, p.String(), qt.Equals, "mqtt:broker:1883/hello/esp32/heartbeat")
}
