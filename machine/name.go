package machine

import (
	"hash/fnv"
	"os"
	"strings"

	"github.com/go-errors/errors"
)

// nameAlphabet leaves out characters that are easy to confuse.
const nameAlphabet = "0W8N4Y1HP5DF9K6JM3C2XA7R"

const nameSuffixLength = 4

// DeviceName derives a stable advertised name such as "Sensor-4NW8" from a
// device specific seed like a MAC address. The suffix never repeats the same
// character twice in a row.
func DeviceName(prefix string, seed string) string {
	h := fnv.New32a()
	h.Write([]byte(seed))
	n := h.Sum32()

	base := uint32(len(nameAlphabet))

	var b strings.Builder
	var prev byte

	for i := 0; i < nameSuffixLength; i++ {
		c := nameAlphabet[n%base]
		n /= base

		if c == prev {
			c = nameAlphabet[(strings.IndexByte(nameAlphabet, c)+1)%len(nameAlphabet)]
		}

		b.WriteByte(c)
		prev = c
	}

	if prefix == "" {
		return b.String()
	}

	return prefix + "-" + b.String()
}

// MachineID reads the systemd machine id used to seed DeviceName.
func MachineID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("could not read machine id: %v", err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", errors.Errorf("machine id in %v is empty", path)
	}

	return id, nil
}
