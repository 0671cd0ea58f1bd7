// Command monitor relays hello heartbeats from MQTT to websocket clients.
package main

import (
	"log"
	"os"
	"strconv"

	"github.com/merliot/hello"
	"github.com/merliot/hello/monitor"
	"github.com/spf13/cobra"
)

// envInt reads an integer from the environment, keeping def when the
// variable is unset or bad
func envInt(name string, def int) int {
	value := hello.GetEnv(name, "")
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Using default %s=%d, bad value: %s", name, def, err)
		return def
	}
	return n
}

func newRootCmd() *cobra.Command {
	cfg := monitor.DefaultConfig()
	var tlsHost string

	maxClients := envInt("MONITOR_MAX_CLIENTS", cfg.MaxClients)

	cmd := &cobra.Command{
		Use:           "monitor",
		Short:         "Relay hello heartbeats from MQTT to websocket clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := monitor.New(cfg)
			if err := m.Connect(); err != nil {
				return err
			}
			defer m.Close()
			if tlsHost != "" {
				log.Printf("Serving https://%s", tlsHost)
				return m.ServeTLS(tlsHost)
			}
			log.Printf("Serving http://%s", cfg.Addr)
			return m.ListenAndServe()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Addr, "addr", hello.GetEnv("MONITOR_ADDR", cfg.Addr), "HTTP listen address")
	flags.StringVar(&cfg.Broker, "broker", hello.GetEnv("MONITOR_BROKER", cfg.Broker), "MQTT broker URL")
	flags.StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "MQTT client id")
	flags.StringVar(&cfg.Topic, "topic", hello.GetEnv("MONITOR_TOPIC", cfg.Topic), "heartbeat topic filter")
	flags.StringVar(&cfg.User, "user", hello.GetEnv("MONITOR_USER", ""), "basic auth user; empty disables auth")
	flags.StringVar(&cfg.Passwd, "passwd", hello.GetEnv("MONITOR_PASSWD", ""), "basic auth password")
	flags.IntVar(&cfg.MaxClients, "max-clients", maxClients, "maximum websocket clients")
	flags.DurationVar(&cfg.PingPeriod, "ping-period", cfg.PingPeriod, "client ping period")
	flags.StringVar(&tlsHost, "tls-host", hello.GetEnv("MONITOR_TLS_HOST", ""), "serve TLS on :443 with a certificate for this host")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
