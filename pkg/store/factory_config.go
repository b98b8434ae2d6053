package store

import (
	"fmt"

	"github.com/ssargent/factoryconfig/pkg/codec"
)

// FactoryConfig is the decoded identity of a board: the base record and the
// generic blocks that extend it. It is built once per run by Open (or by a
// Loader) and written back only through a Writer.
type FactoryConfig struct {
	Base   codec.BaseConfig
	Blocks *BlockStore
}

// New returns a configuration holding built-in defaults and no blocks.
// capacity bounds block payloads, normally the medium size.
func New(capacity int) *FactoryConfig {
	return &FactoryConfig{
		Base:   codec.DefaultBaseConfig(),
		Blocks: NewBlockStore(capacity),
	}
}

// Reset replaces everything with defaults. Known blocks are materialized
// again on their next lookup.
func (fc *FactoryConfig) Reset() {
	fc.Base = codec.DefaultBaseConfig()
	fc.Blocks = NewBlockStore(fc.Blocks.Capacity())
}

// Block returns the block of a known type t, creating it with its default
// payload if absent.
func (fc *FactoryConfig) Block(t codec.BlockType) (*codec.GenericBlock, error) {
	def, ok := codec.DefaultPayload(t)
	if !ok {
		return nil, fmt.Errorf("store: no default for block type %s", t)
	}
	return fc.Blocks.GetOrCreate(t, def)
}

// SecondaryMAC returns the second MAC address.
func (fc *FactoryConfig) SecondaryMAC() (codec.MACAddress, error) {
	b, err := fc.Block(codec.BlockSecondaryMAC)
	if err != nil {
		return codec.MACAddress{}, err
	}
	return codec.DecodeMACPayload(b.Data)
}

// SetSecondaryMAC overwrites the payload of the SecondaryMac block.
func (fc *FactoryConfig) SetSecondaryMAC(mac codec.MACAddress) error {
	b, err := fc.Block(codec.BlockSecondaryMAC)
	if err != nil {
		return err
	}
	if len(b.Data) < codec.MACLength {
		return fmt.Errorf("store: %s block holds %d bytes", b.Header.Type, len(b.Data))
	}
	copy(b.Data, mac[:])
	return nil
}

// RtcCalibration returns the RTC calibration in ppm * 10.
func (fc *FactoryConfig) RtcCalibration() (int32, error) {
	b, err := fc.Block(codec.BlockRtcCalibration)
	if err != nil {
		return 0, err
	}
	return codec.DecodeRtcCalPayload(b.Data)
}

// SetRtcCalibration overwrites the payload of the RtcCalibration block.
func (fc *FactoryConfig) SetRtcCalibration(v int32) error {
	b, err := fc.Block(codec.BlockRtcCalibration)
	if err != nil {
		return err
	}
	if len(b.Data) < codec.RtcCalibrationSize {
		return fmt.Errorf("store: %s block holds %d bytes", b.Header.Type, len(b.Data))
	}
	copy(b.Data, codec.EncodeRtcCalPayload(v))
	return nil
}

// BoardSerial returns the serial number split the way the kernel ATAG
// expects it.
func (fc *FactoryConfig) BoardSerial() (low, high uint32) {
	return fc.Base.SerialNumber, 0
}
