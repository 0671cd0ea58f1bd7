// Package monitor relays hello heartbeats from an MQTT broker to websocket
// clients.
package monitor

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"log"
	"net/http"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/net/websocket"
)

type Config struct {
	// Addr is the HTTP listen address
	Addr string
	// Broker is the MQTT broker URL, e.g. tcp://localhost:1883
	Broker   string
	ClientID string
	// Topic filter for heartbeats
	Topic string

	User       string
	Passwd     string
	MaxClients int
	PingPeriod time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:       ":8080",
		Broker:     "tcp://localhost:1883",
		ClientID:   "hello-monitor",
		Topic:      "hello/+/heartbeat",
		MaxClients: defaultMaxClients,
		PingPeriod: 4 * time.Second,
	}
}

type Monitor struct {
	http.Server
	cfg  Config
	hub  *Hub
	mqtt paho.Client
}

func New(cfg Config) *Monitor {
	m := &Monitor{cfg: cfg, hub: NewHub(cfg.MaxClients)}
	m.Addr = cfg.Addr

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.basicAuth(m.serveWs))
	mux.HandleFunc("/state", m.basicAuth(m.serveState))
	m.Handler = mux

	return m
}

// Connect to the broker and subscribe to heartbeats.  The subscription is
// renewed on every reconnect.
func (m *Monitor) Connect() error {
	opts := paho.NewClientOptions().
		AddBroker(m.cfg.Broker).
		SetClientID(m.cfg.ClientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(m.subscribe).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("Lost %s: %s", m.cfg.Broker, err)
		})

	m.mqtt = paho.NewClient(opts)
	token := m.mqtt.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connecting to %s: %w", m.cfg.Broker, err)
	}
	return nil
}

func (m *Monitor) subscribe(c paho.Client) {
	token := c.Subscribe(m.cfg.Topic, 0, func(_ paho.Client, msg paho.Message) {
		m.heartbeat(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("Subscribing to %s: %s", m.cfg.Topic, err)
		return
	}
	log.Printf("Subscribed to %s on %s", m.cfg.Topic, m.cfg.Broker)
}

func (m *Monitor) heartbeat(topic string, payload []byte) {
	log.Printf("%s %s", topic, payload)
	m.hub.broadcast(topic, payload)
}

// Close disconnects from the broker and stops the HTTP server
func (m *Monitor) Close() error {
	if m.mqtt != nil {
		m.mqtt.Disconnect(250)
	}
	return m.Server.Close()
}

func (m *Monitor) serveWs(w http.ResponseWriter, r *http.Request) {
	serv := websocket.Server{Handler: websocket.Handler(func(conn *websocket.Conn) {
		c := newClient(conn, m.cfg.PingPeriod)
		m.hub.plugin(c)
		defer m.hub.unplug(c)
		c.serve()
	})}
	serv.ServeHTTP(w, r)
}

func (m *Monitor) serveState(w http.ResponseWriter, r *http.Request) {
	state, err := m.hub.state()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(state)
}

func (m *Monitor) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {

		// skip basic authentication if no user
		if m.cfg.User == "" {
			next.ServeHTTP(writer, r)
			return
		}

		ruser, rpasswd, ok := r.BasicAuth()

		if ok {
			userHash := sha256.Sum256([]byte(m.cfg.User))
			passHash := sha256.Sum256([]byte(m.cfg.Passwd))
			ruserHash := sha256.Sum256([]byte(ruser))
			rpassHash := sha256.Sum256([]byte(rpasswd))

			// https://www.alexedwards.net/blog/basic-authentication-in-go
			userMatch := (subtle.ConstantTimeCompare(userHash[:], ruserHash[:]) == 1)
			passMatch := (subtle.ConstantTimeCompare(passHash[:], rpassHash[:]) == 1)

			if userMatch && passMatch {
				next.ServeHTTP(writer, r)
				return
			}
		}

		writer.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		http.Error(writer, "Unauthorized", http.StatusUnauthorized)
	})
}
