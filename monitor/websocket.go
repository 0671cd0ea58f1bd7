package monitor

import (
	"bytes"
	"log"
	"net"
	"time"

	sync "github.com/sasha-s/go-deadlock"
	"golang.org/x/net/websocket"
)

// client is a websocket connection plugged into the hub
type client struct {
	mu         sync.Mutex
	name       string
	conn       *websocket.Conn
	pingPeriod time.Duration
}

const (
	pingPeriodMin = time.Second
	writeTimeout  = 5 * time.Second
)

var pingMsg = []byte("ping")
var pongMsg = []byte("pong")

func newClient(conn *websocket.Conn, pingPeriod time.Duration) *client {
	if pingPeriod < pingPeriodMin {
		pingPeriod = pingPeriodMin
	}
	return &client{
		name:       "ws:" + conn.Request().RemoteAddr,
		conn:       conn,
		pingPeriod: pingPeriod,
	}
}

func (c *client) String() string {
	return c.name
}

func (c *client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return websocket.Message.Send(c.conn, string(payload))
}

// serve answers pings until the peer goes quiet for longer than the ping
// period plus slack, or the connection fails
func (c *client) serve() {

	pingCheck := c.pingPeriod + (4 * time.Second)
	lastRecv := time.Now()

	for {
		var payload []byte

		c.conn.SetReadDeadline(time.Now().Add(time.Second))
		err := websocket.Message.Receive(c.conn, &payload)
		if err == nil {
			lastRecv = time.Now()
			if bytes.Equal(payload, pingMsg) {
				if err := c.Send(pongMsg); err != nil {
					log.Printf("Error sending pong, disconnecting %s: %s", c, err)
					return
				}
			}
			continue
		}

		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			if time.Now().After(lastRecv.Add(pingCheck)) {
				log.Printf("Timeout, disconnecting %s %s", c, time.Since(lastRecv))
				return
			}
			continue
		}

		log.Printf("Disconnecting %s: %s", c, err)
		return
	}
}
