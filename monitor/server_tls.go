package monitor

import (
	"golang.org/x/crypto/acme/autocert"
)

// ServeTLS serves on :443 with a Let's Encrypt certificate for host
func (m *Monitor) ServeTLS(host string) error {
	return m.Serve(autocert.NewListener(host))
}
