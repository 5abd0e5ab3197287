// Package rig derives the identity and descriptive properties of
// the physical test rig an agent runs on.
package rig

import (
	"fmt"
	"net"
	"strings"

	"github.com/hildist/hildist/pkg/utils"
)

// DefaultInterfaces is the default candidate order for identity
// resolution, covering macOS and common Linux interface names.
var DefaultInterfaces = []string{"en0", "eth0", "eno1", "enp0s3", "wlan0"}

// WorkerID derives the worker identity from the hardware address of
// the first candidate network interface present on the host. The
// candidates are tried in order. Separators are stripped from the
// address so the id is safe to embed in URL paths.
func WorkerID(candidates []string) (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("failed to list interfaces: %w", err)
	}
	return workerIDFrom(interfaces, candidates)
}

func workerIDFrom(interfaces []net.Interface, candidates []string) (string, error) {
	for _, name := range candidates {
		for _, iface := range interfaces {
			if iface.Name != name {
				continue
			}

			// Interfaces without a hardware address, such as
			// loopbacks, cannot identify a rig.
			id := stripSeparators(iface.HardwareAddr.String())
			if id == "" {
				continue
			}
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s", utils.ErrNoInterface, strings.Join(candidates, ", "))
}

func stripSeparators(addr string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '-':
			return -1
		}
		return r
	}, addr)
}
