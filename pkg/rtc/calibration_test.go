package rtc

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	testCases := []struct {
		name    string
		cal     int32
		adjust  int
		xtcal   uint8
		cmdx    uint8
		offsetx int
		xtReg   byte
		wantErr error
	}{
		{name: "zero", cal: 0, adjust: 0, xtReg: 0x00},
		{name: "small positive", cal: 100, adjust: 5, offsetx: 5, xtReg: 0x05},
		{name: "small negative", cal: -100, adjust: -5, offsetx: -5, xtReg: 0x7B},
		{name: "xtcal 1", cal: -2000, adjust: -105, xtcal: 1, offsetx: -41, xtReg: 0x57},
		{name: "coarse positive", cal: 1500, adjust: 79, cmdx: 1, offsetx: 39, xtReg: 0xA7},
		{name: "xtcal 3 with cmdx", cal: -5500, adjust: -288, xtcal: 3, cmdx: 1, offsetx: -48, xtReg: 0xD0},
		{name: "too high", cal: -6200, adjust: -325, wantErr: ErrTooHigh},
		{name: "too low", cal: 2500, adjust: 131, wantErr: ErrTooLow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Plan(tc.cal)
			assert.Equal(t, tc.adjust, s.Adjust)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.xtcal, s.XTCal)
			assert.Equal(t, tc.cmdx, s.CmdX)
			assert.Equal(t, tc.offsetx, s.OffsetX)
			assert.Equal(t, tc.xtReg, s.XTCalRegister())
		})
	}
}

func TestSetting_OscRegister(t *testing.T) {
	assert.Equal(t, byte(0x7F), Setting{XTCal: 1}.OscRegister(0xFF))
	assert.Equal(t, byte(0xC5), Setting{XTCal: 3}.OscRegister(0x05))
	assert.Equal(t, byte(0x05), Setting{XTCal: 0}.OscRegister(0xC5))
}

type fakeBus struct {
	regs    map[byte]byte
	writes  []byte
	failReg int
}

func newFakeBus() *fakeBus {
	return &fakeBus{regs: map[byte]byte{}, failReg: -1}
}

func (b *fakeBus) ReadRegister(reg byte) (byte, error) {
	if int(reg) == b.failReg {
		return 0, errors.New("nak")
	}
	return b.regs[reg], nil
}

func (b *fakeBus) WriteRegister(reg, val byte) error {
	if int(reg) == b.failReg {
		return errors.New("nak")
	}
	b.writes = append(b.writes, reg)
	b.regs[reg] = val
	return nil
}

func TestApply(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := newFakeBus()
	bus.regs[RegOsc] = 0x15

	s, err := Plan(-2000)
	require.NoError(t, err)
	require.NoError(t, Apply(bus, s, logger))

	assert.Equal(t, []byte{RegXTCal, RegOsc}, bus.writes)
	assert.Equal(t, byte(0x57), bus.regs[RegXTCal])
	assert.Equal(t, byte(0x55), bus.regs[RegOsc])
}

func TestApply_BusErrors(t *testing.T) {
	for _, reg := range []int{RegXTCal, RegOsc} {
		bus := newFakeBus()
		bus.failReg = reg
		err := Apply(bus, Setting{}, nil)
		assert.Error(t, err, "register 0x%02x", reg)
	}
}

func TestCalibrationMode(t *testing.T) {
	bus := newFakeBus()

	require.NoError(t, CalibrationMode(bus, true))
	assert.Equal(t, byte(0xAB), bus.regs[RegSQW])
	assert.Equal(t, byte(0x24), bus.regs[RegCtl2])

	require.NoError(t, CalibrationMode(bus, false))
	assert.Equal(t, byte(0x26), bus.regs[RegSQW])
	assert.Equal(t, byte(0x3C), bus.regs[RegCtl2])
}
