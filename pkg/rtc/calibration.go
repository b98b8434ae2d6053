// Package rtc programs the AB1805 real-time clock XT oscillator digital
// calibration from the factory RtcCalibration value.
package rtc

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// AB18xx registers touched by calibration.
const (
	RegCtl2  = 0x11
	RegSQW   = 0x13
	RegXTCal = 0x14
	RegOsc   = 0x1D
)

// Register values for the 16 Hz square wave used while measuring the crystal.
const (
	sqw16HzOff  = 0x26
	ctl216HzOff = 0x3C
	sqw16HzOn   = 0xAB
	ctl216HzOn  = 0x24
)

// FreqAdjust is the ppm step of one OFFSETX count.
const FreqAdjust = 1.90735

var (
	// ErrTooHigh means the crystal runs too fast to be corrected.
	ErrTooHigh = errors.New("rtc: XT frequency too high to calibrate")
	// ErrTooLow means the crystal runs too slow to be corrected.
	ErrTooLow = errors.New("rtc: XT frequency too low to calibrate")
)

// Setting is the decomposition of a calibration value into AB1805 fields.
type Setting struct {
	Calibration int32 // ppm * 10, as stored in the factory config
	Adjust      int
	XTCal       uint8
	CmdX        uint8
	OffsetX     int
}

// XTCalRegister is the value written to RegXTCal.
func (s Setting) XTCalRegister() byte {
	return byte(s.CmdX<<7)&0x80 | byte(s.OffsetX)&0x7F
}

// OscRegister merges XTCAL into the current oscillator control value.
func (s Setting) OscRegister(current byte) byte {
	return current&0x3F | (s.XTCal<<6)&0xC0
}

// Plan converts a calibration value in ppm * 10 into register fields,
// following the XT digital calibration ranges of the AB18xx manual.
func Plan(cal int32) (Setting, error) {
	padj := float64(cal) / 10.0
	// round half away from zero
	adj := int(math.Trunc(padj/FreqAdjust + math.Copysign(0.5, padj)))

	s := Setting{Calibration: cal, Adjust: adj}
	switch {
	case adj < -320:
		return s, fmt.Errorf("%w: adjust %d", ErrTooHigh, adj)
	case adj < -256:
		s.XTCal, s.CmdX, s.OffsetX = 3, 1, (adj+192)/2
	case adj < -192:
		s.XTCal, s.CmdX, s.OffsetX = 3, 0, adj+192
	case adj < -128:
		s.XTCal, s.CmdX, s.OffsetX = 2, 0, adj+128
	case adj < -64:
		s.XTCal, s.CmdX, s.OffsetX = 1, 0, adj+64
	case adj < 64:
		s.XTCal, s.CmdX, s.OffsetX = 0, 0, adj
	case adj < 128:
		s.XTCal, s.CmdX, s.OffsetX = 0, 1, adj/2
	default:
		return s, fmt.Errorf("%w: adjust %d", ErrTooLow, adj)
	}
	return s, nil
}

// RegisterBus reads and writes single byte RTC registers.
type RegisterBus interface {
	ReadRegister(reg byte) (byte, error)
	WriteRegister(reg, val byte) error
}

// Apply writes s to the clock: XT_CAL first, then a read-modify-write of the
// oscillator control register.
func Apply(bus RegisterBus, s Setting, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"xtcal": s.XTCal, "cmdx": s.CmdX, "offsetx": s.OffsetX})

	xt := s.XTCalRegister()
	if err := bus.WriteRegister(RegXTCal, xt); err != nil {
		return fmt.Errorf("write XT_CAL: %w", err)
	}

	osc, err := bus.ReadRegister(RegOsc)
	if err != nil {
		return fmt.Errorf("read OSC: %w", err)
	}
	next := s.OscRegister(osc)
	if err := bus.WriteRegister(RegOsc, next); err != nil {
		return fmt.Errorf("write OSC: %w", err)
	}

	log.WithFields(logrus.Fields{"cal_xt_reg": xt, "osc_reg": next}).Debug("RTC calibration applied")
	return nil
}

// CalibrationMode turns the 16 Hz square wave output used for measuring the
// crystal on or off.
func CalibrationMode(bus RegisterBus, on bool) error {
	sqw, ctl2 := byte(sqw16HzOff), byte(ctl216HzOff)
	if on {
		sqw, ctl2 = sqw16HzOn, ctl216HzOn
	}
	if err := bus.WriteRegister(RegSQW, sqw); err != nil {
		return fmt.Errorf("write SQW: %w", err)
	}
	if err := bus.WriteRegister(RegCtl2, ctl2); err != nil {
		return fmt.Errorf("write CTL2: %w", err)
	}
	return nil
}
