package store

import (
	"github.com/ssargent/factoryconfig/pkg/codec"
)

// Fields is a partial update of the editable identity fields. Nil fields are
// left untouched. It is the shape accepted by the apply command and the HTTP
// API.
type Fields struct {
	MAC            *codec.MACAddress `yaml:"mac,omitempty" json:"mac,omitempty"`
	SecondaryMAC   *codec.MACAddress `yaml:"secondary_mac,omitempty" json:"secondary_mac,omitempty"`
	SerialNumber   *uint32           `yaml:"serial_number,omitempty" json:"serial_number,omitempty"`
	Model          *string           `yaml:"model,omitempty" json:"model,omitempty"`
	RtcCalibration *int32            `yaml:"rtc_calibration,omitempty" json:"rtc_calibration,omitempty"`
}

// Apply copies the set fields into fc. A zero serial number is ignored so an
// empty answer never clears a programmed serial.
func (fc *FactoryConfig) Apply(f Fields) error {
	if f.MAC != nil {
		fc.Base.MAC = *f.MAC
	}
	if f.SecondaryMAC != nil {
		if err := fc.SetSecondaryMAC(*f.SecondaryMAC); err != nil {
			return err
		}
	}
	if f.SerialNumber != nil && *f.SerialNumber > 0 {
		fc.Base.SerialNumber = *f.SerialNumber
	}
	if f.Model != nil {
		fc.Base.SetModel(*f.Model)
	}
	if f.RtcCalibration != nil {
		if err := fc.SetRtcCalibration(*f.RtcCalibration); err != nil {
			return err
		}
	}
	return nil
}

// View is a display and serialization friendly copy of a configuration.
type View struct {
	Version         string           `yaml:"version" json:"version"`
	MAC             codec.MACAddress `yaml:"mac" json:"mac"`
	SecondaryMAC    codec.MACAddress `yaml:"secondary_mac" json:"secondary_mac"`
	SerialNumber    uint32           `yaml:"serial_number" json:"serial_number"`
	Model           string           `yaml:"model" json:"model"`
	RtcCalibration  int32            `yaml:"rtc_calibration" json:"rtc_calibration"`
	FpgaType        uint32           `yaml:"fpga_type" json:"fpga_type"`
	Spare           uint32           `yaml:"spare" json:"spare"`
	BoardSerialLow  uint32           `yaml:"board_serial_low" json:"board_serial_low"`
	BoardSerialHigh uint32           `yaml:"board_serial_high" json:"board_serial_high"`
	Blocks          []BlockView      `yaml:"blocks" json:"blocks"`
}

// BlockView describes one generic block.
type BlockView struct {
	Type string `yaml:"type" json:"type"`
	Size uint16 `yaml:"size" json:"size"`
}

// View materializes the known blocks, as the display code always has, and
// returns a snapshot of every field.
func (fc *FactoryConfig) View() (View, error) {
	mac2, err := fc.SecondaryMAC()
	if err != nil {
		return View{}, err
	}
	rtc, err := fc.RtcCalibration()
	if err != nil {
		return View{}, err
	}

	low, high := fc.BoardSerial()
	v := View{
		Version:         fc.Base.VersionString(),
		MAC:             fc.Base.MAC,
		SecondaryMAC:    mac2,
		SerialNumber:    fc.Base.SerialNumber,
		Model:           fc.Base.Model(),
		RtcCalibration:  rtc,
		FpgaType:        fc.Base.FpgaType,
		Spare:           fc.Base.Spare,
		BoardSerialLow:  low,
		BoardSerialHigh: high,
	}
	for _, b := range fc.Blocks.Blocks() {
		v.Blocks = append(v.Blocks, BlockView{Type: b.Header.Type.String(), Size: b.Header.Size})
	}
	return v, nil
}
