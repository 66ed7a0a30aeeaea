// Package deviceid resolves the stable per-host identifier carried in the
// principal block of every authorization request.
package deviceid

import (
	"context"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

const (
	machineIDPath = "/etc/machine-id"
	fallbackID    = "unknown-device"
	probeTimeout  = 2 * time.Second
)

var (
	once  sync.Once
	cache string
)

// Get returns the device identifier, reading it once per process and
// caching the result. Resolution order: machine-id file, gopsutil host ID,
// hostname, MAC address of the first non-loopback interface, the literal
// fallbackID.
func Get() string {
	once.Do(func() {
		cache = resolve()
	})
	return cache
}

func resolve() string {
	if id, ok := readMachineID(); ok {
		return id
	}
	if id, ok := readHostID(); ok {
		return id
	}
	if id, ok := readHostname(); ok {
		return id
	}
	if id, ok := readMACAddress(); ok {
		return id
	}
	return fallbackID
}

func readMachineID() (string, bool) {
	data, err := os.ReadFile(machineIDPath)
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", false
	}
	return id, true
}

// readHostID falls back to gopsutil's cross-platform machine identifier for
// hosts without a systemd-style machine-id file (containers built on
// minimal base images, non-Linux hosts).
func readHostID() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	id, err := host.HostIDWithContext(ctx)
	if err != nil || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

func readHostname() (string, bool) {
	name, err := os.Hostname()
	if err != nil || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

func readMACAddress() (string, bool) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", false
	}
	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String(), true
	}
	return "", false
}

// reset is a test hook clearing the cached value so resolution order can be
// exercised repeatedly within one process.
func reset() {
	once = sync.Once{}
	cache = ""
}
