package rtc

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl that selects the target address.
const i2cSlave = 0x0703

// DefaultAddress is the AB1805 I2C address.
const DefaultAddress = 0x69

// I2CBus talks to the clock through a Linux i2c-dev node.
type I2CBus struct {
	f *os.File
}

// OpenI2C opens dev (for example /dev/i2c-0) and selects addr.
func OpenI2C(dev string, addr int) (*I2CBus, error) {
	f, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dev)
	}
	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, addr); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "select address 0x%02x on %s", addr, dev)
	}
	return &I2CBus{f: f}, nil
}

// ReadRegister implements RegisterBus.
func (b *I2CBus) ReadRegister(reg byte) (byte, error) {
	if _, err := b.f.Write([]byte{reg}); err != nil {
		return 0, errors.Wrapf(err, "select register 0x%02x", reg)
	}
	buf := make([]byte, 1)
	if _, err := b.f.Read(buf); err != nil {
		return 0, errors.Wrapf(err, "read register 0x%02x", reg)
	}
	return buf[0], nil
}

// WriteRegister implements RegisterBus.
func (b *I2CBus) WriteRegister(reg, val byte) error {
	_, err := b.f.Write([]byte{reg, val})
	return errors.Wrapf(err, "write register 0x%02x", reg)
}

// Close releases the device node.
func (b *I2CBus) Close() error {
	return b.f.Close()
}
