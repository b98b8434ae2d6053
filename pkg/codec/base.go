package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// MagicWord marks both the base record and every generic block header.
	MagicWord uint32 = 0x012C0138

	// Version11 was never released but decodes with the current layout.
	Version11 uint32 = 0x00010001
	// Version12 is the base record followed by generic blocks.
	Version12 uint32 = 0x00010002
	// Version13 carries an inline second MAC and is only ever read.
	Version13 uint32 = 0x00010003

	// CurrentVersion is written by Encode.
	CurrentVersion = Version12

	// ModelNumberLength is the size of the NUL terminated model field.
	ModelNumberLength = 32

	// BaseSize is the on-medium size of the current layout.
	// [magic(4)][version(4)][mac(6)][pad(2)][fpga(4)][spare(4)][serial(4)][model(32)]
	BaseSize = 60

	// LegacyV3Size is BaseSize plus the inline second MAC and its padding.
	LegacyV3Size = BaseSize + 8

	// BaseChecksumSize is the width in bytes of the trailer after the base record.
	BaseChecksumSize = 2

	// ProbeSize covers the magic and version words read to select a layout.
	ProbeSize = 8
)

const (
	offMagic   = 0
	offVersion = 4
	offMAC     = 8
	offFpga    = 16
	offSpare   = 20
	offSerial  = 24
	offModel   = 28
	offMAC2    = BaseSize
)

// BaseConfig is the fixed identity record written at the start of the medium.
type BaseConfig struct {
	Magic        uint32
	Version      uint32 // major<<16 | minor
	MAC          MACAddress
	FpgaType     uint32 // reserved, round-tripped
	Spare        uint32 // reserved, round-tripped
	SerialNumber uint32
	ModelNumber  [ModelNumberLength]byte
}

// LegacyBaseConfigV3 is the obsolete 1.3 layout with the second MAC inline.
type LegacyBaseConfigV3 struct {
	BaseConfig
	SecondMAC MACAddress
}

// DefaultBaseConfig returns the record substituted when the medium holds
// nothing usable.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		Magic:   MagicWord,
		Version: CurrentVersion,
	}
}

// FormatVersion renders a version word as major.minor.
func FormatVersion(v uint32) string {
	return fmt.Sprintf("%d.%d", v>>16, v&0xFFFF)
}

// VersionString renders the version as major.minor.
func (c *BaseConfig) VersionString() string {
	return FormatVersion(c.Version)
}

// Model returns the model number up to its NUL terminator.
func (c *BaseConfig) Model() string {
	if i := bytes.IndexByte(c.ModelNumber[:], 0); i >= 0 {
		return string(c.ModelNumber[:i])
	}
	return string(c.ModelNumber[:])
}

// SetModel stores s truncated to 31 bytes. Anything after an embedded NUL
// is dropped.
func (c *BaseConfig) SetModel(s string) {
	if i := bytes.IndexByte([]byte(s), 0); i >= 0 {
		s = s[:i]
	}
	if len(s) > ModelNumberLength-1 {
		s = s[:ModelNumberLength-1]
	}
	c.ModelNumber = [ModelNumberLength]byte{}
	copy(c.ModelNumber[:], s)
}

// Terminate forces the last model byte to NUL.
func (c *BaseConfig) Terminate() {
	c.ModelNumber[ModelNumberLength-1] = 0
}

// RecordSize returns the on-medium size of the base record for version.
func RecordSize(version uint32) (int, error) {
	switch version {
	case Version11, Version12:
		return BaseSize, nil
	case Version13:
		return LegacyV3Size, nil
	}
	return 0, &VersionError{Version: version}
}

// Probe reads the magic and version words from the first ProbeSize bytes and
// returns the record size that applies.
func Probe(data []byte) (version uint32, size int, err error) {
	if len(data) < ProbeSize {
		return 0, 0, ErrShortBuffer
	}
	if binary.LittleEndian.Uint32(data[offMagic:]) != MagicWord {
		return 0, 0, ErrBadMagic
	}
	version = binary.LittleEndian.Uint32(data[offVersion:])
	size, err = RecordSize(version)
	return version, size, err
}

// DecodeBase decodes the fields common to every layout. data must hold at
// least RecordSize(version) bytes. The result always carries CurrentVersion.
func DecodeBase(data []byte, version uint32) (BaseConfig, error) {
	size, err := RecordSize(version)
	if err != nil {
		return BaseConfig{}, err
	}
	if len(data) < size {
		return BaseConfig{}, fmt.Errorf("base record v%d.%d needs %d bytes, have %d: %w",
			version>>16, version&0xFFFF, size, len(data), ErrShortBuffer)
	}
	if binary.LittleEndian.Uint32(data[offMagic:]) != MagicWord {
		return BaseConfig{}, ErrBadMagic
	}

	var c BaseConfig
	c.Magic = MagicWord
	c.Version = CurrentVersion
	copy(c.MAC[:], data[offMAC:offMAC+MACLength])
	c.FpgaType = binary.LittleEndian.Uint32(data[offFpga:])
	c.Spare = binary.LittleEndian.Uint32(data[offSpare:])
	c.SerialNumber = binary.LittleEndian.Uint32(data[offSerial:])
	copy(c.ModelNumber[:], data[offModel:offModel+ModelNumberLength])
	c.Terminate()
	return c, nil
}

// DecodeLegacyV3 decodes a 1.3 record including its inline second MAC.
func DecodeLegacyV3(data []byte) (LegacyBaseConfigV3, error) {
	base, err := DecodeBase(data, Version13)
	if err != nil {
		return LegacyBaseConfigV3{}, err
	}
	l := LegacyBaseConfigV3{BaseConfig: base}
	copy(l.SecondMAC[:], data[offMAC2:offMAC2+MACLength])
	return l, nil
}

// EncodeBase serializes c in the current layout. Magic and version are
// always rewritten to their canonical values.
func EncodeBase(c BaseConfig) []byte {
	buf := make([]byte, BaseSize)
	binary.LittleEndian.PutUint32(buf[offMagic:], MagicWord)
	binary.LittleEndian.PutUint32(buf[offVersion:], CurrentVersion)
	copy(buf[offMAC:], c.MAC[:])
	binary.LittleEndian.PutUint32(buf[offFpga:], c.FpgaType)
	binary.LittleEndian.PutUint32(buf[offSpare:], c.Spare)
	binary.LittleEndian.PutUint32(buf[offSerial:], c.SerialNumber)
	copy(buf[offModel:offModel+ModelNumberLength-1], c.ModelNumber[:ModelNumberLength-1])
	return buf
}

// EncodeLegacyV3 produces a 1.3 record. Only tests and migration tooling use
// it; the writer never emits this layout.
func EncodeLegacyV3(l LegacyBaseConfigV3) []byte {
	buf := make([]byte, LegacyV3Size)
	copy(buf, EncodeBase(l.BaseConfig))
	binary.LittleEndian.PutUint32(buf[offVersion:], Version13)
	copy(buf[offMAC2:], l.SecondMAC[:])
	return buf
}

// AppendBaseChecksum appends the little-endian Sum16 of record to record.
func AppendBaseChecksum(record []byte) []byte {
	return binary.LittleEndian.AppendUint16(record, Sum16(record))
}

// VerifyBaseChecksum compares the stored trailer against Sum16(record).
func VerifyBaseChecksum(record, trailer []byte) error {
	if len(trailer) < BaseChecksumSize {
		return ErrShortBuffer
	}
	stored := binary.LittleEndian.Uint16(trailer)
	if actual := Sum16(record); actual != stored {
		return &ChecksumError{Width: 16, Expected: uint32(stored), Actual: uint32(actual)}
	}
	return nil
}
