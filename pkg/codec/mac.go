package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// MACLength is the number of bytes in a MAC address.
const MACLength = 6

// MACAddress is a 6-byte Ethernet hardware address as stored on the medium.
type MACAddress [MACLength]byte

// String formats the address as upper-case, colon separated hex.
func (m MACAddress) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// EnvString formats the address the way the boot environment expects it
// (lower-case hex).
func (m MACAddress) EnvString() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsZero reports whether every byte is zero.
func (m MACAddress) IsZero() bool {
	return m == MACAddress{}
}

// IsValidEthernet reports whether the address is usable as a unicast
// interface address: not all zero and not multicast.
func (m MACAddress) IsValidEthernet() bool {
	return !m.IsZero() && m[0]&0x01 == 0
}

// ParseMAC parses an address of the form xx:xx:xx:xx:xx:xx. Each group is one
// or two hex digits; missing trailing groups are left as zero.
func ParseMAC(s string) (MACAddress, error) {
	var mac MACAddress
	s = strings.TrimSpace(s)
	if s == "" {
		return mac, fmt.Errorf("empty MAC address")
	}

	parts := strings.Split(s, ":")
	if len(parts) > MACLength {
		return mac, fmt.Errorf("MAC address %q has %d groups", s, len(parts))
	}
	for i, p := range parts {
		if p == "" || len(p) > 2 {
			return mac, fmt.Errorf("MAC address %q: bad group %q", s, p)
		}
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return mac, fmt.Errorf("MAC address %q: %w", s, err)
		}
		mac[i] = byte(v)
	}
	return mac, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m MACAddress) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MACAddress) UnmarshalText(text []byte) error {
	mac, err := ParseMAC(string(text))
	if err != nil {
		return err
	}
	*m = mac
	return nil
}
