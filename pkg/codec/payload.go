package codec

import (
	"encoding/binary"
	"fmt"
)

// RtcCalibrationSize is the payload size of a BlockRtcCalibration block.
const RtcCalibrationSize = 4

// DefaultPayload returns the payload materialized when a known block type is
// looked up but absent. Unknown types have no default.
func DefaultPayload(t BlockType) ([]byte, bool) {
	switch t {
	case BlockSecondaryMAC:
		return make([]byte, MACLength), true
	case BlockRtcCalibration:
		return make([]byte, RtcCalibrationSize), true
	}
	return nil, false
}

// DecodeMACPayload reads a SecondaryMac payload.
func DecodeMACPayload(data []byte) (MACAddress, error) {
	var mac MACAddress
	if len(data) < MACLength {
		return mac, fmt.Errorf("mac payload of %d bytes: %w", len(data), ErrShortBuffer)
	}
	copy(mac[:], data)
	return mac, nil
}

// EncodeMACPayload writes mac into a SecondaryMac payload.
func EncodeMACPayload(mac MACAddress) []byte {
	out := make([]byte, MACLength)
	copy(out, mac[:])
	return out
}

// DecodeRtcCalPayload reads a RtcCalibration payload (ppm * 10).
func DecodeRtcCalPayload(data []byte) (int32, error) {
	if len(data) < RtcCalibrationSize {
		return 0, fmt.Errorf("rtc calibration payload of %d bytes: %w", len(data), ErrShortBuffer)
	}
	return int32(binary.LittleEndian.Uint32(data)), nil
}

// EncodeRtcCalPayload writes a RtcCalibration payload.
func EncodeRtcCalPayload(v int32) []byte {
	out := make([]byte, RtcCalibrationSize)
	binary.LittleEndian.PutUint32(out, uint32(v))
	return out
}
