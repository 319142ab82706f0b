// Package device derives the stable per-device identity the backend uses to
// recognize a returning install without an account.
package device

import (
	"encoding/base64"
	"errors"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redvelvet/companion/internal/logging"
)

var log = logging.Get()

var machineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

var (
	once        sync.Once
	fingerprint string
)

// Fingerprint returns the device fingerprint, computed once and memoized for
// the process lifetime. If derivation fails it falls back to a time-seeded
// value so the app stays usable; that value is not stable across restarts.
func Fingerprint() string {
	once.Do(func() {
		fp, err := derive()
		if err != nil {
			log.Error("Fingerprint derivation failed, using time-seeded fallback: %v", err)
			fp = fallback()
		}
		fingerprint = fp
	})
	return fingerprint
}

// derive concatenates the installation identifier with host and platform
// strings and encodes the result as a printable token. Pure with respect to
// the hardware/OS identifiers: same device, same fingerprint.
func derive() (string, error) {
	id, err := installationID()
	if err != nil {
		return "", err
	}

	host, err := os.Hostname()
	if err != nil {
		return "", err
	}

	raw := id + "_" + host + "_" + runtime.GOOS + "_" + runtime.GOARCH
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// installationID reads the OS-assigned machine identifier.
func installationID() (string, error) {
	for _, path := range machineIDPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}
	return "", errors.New("no machine id available")
}

// fallback produces a usable but unstable identity.
func fallback() string {
	return "android_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
