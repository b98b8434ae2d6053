package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// BlockHeaderSize is [magic(4)][type(2)][size(2)].
	BlockHeaderSize = 8

	// BlockChecksumSize is the width in bytes of the trailer after a block payload.
	BlockChecksumSize = 4

	// TerminatorSize is the zero word written after the last block.
	TerminatorSize = 4
)

// BlockType identifies the payload of a generic block.
type BlockType uint16

const (
	// BlockSecondaryMAC holds a 6-byte MAC address.
	BlockSecondaryMAC BlockType = 0x0000
	// BlockRtcCalibration holds a signed 32-bit calibration in ppm*10.
	BlockRtcCalibration BlockType = 0x0001
)

// String names the known types and prints the raw value otherwise.
func (t BlockType) String() string {
	switch t {
	case BlockSecondaryMAC:
		return "SecondaryMac"
	case BlockRtcCalibration:
		return "RtcCalibration"
	}
	return fmt.Sprintf("BlockType(0x%04X)", uint16(t))
}

// Known reports whether readers of this version retain blocks of type t.
func (t BlockType) Known() bool {
	switch t {
	case BlockSecondaryMAC, BlockRtcCalibration:
		return true
	}
	return false
}

// BlockHeader precedes every generic block payload.
type BlockHeader struct {
	Magic uint32
	Type  BlockType
	Size  uint16
}

// GenericBlock is a typed, independently checksummed extension record. The
// checksum trailer is not held in memory; it is recomputed on encode.
type GenericBlock struct {
	Header BlockHeader
	Data   []byte
}

// NewBlock builds a block of type t holding a copy of data.
func NewBlock(t BlockType, data []byte) (*GenericBlock, error) {
	if len(data) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}
	payload := make([]byte, len(data))
	copy(payload, data)
	return &GenericBlock{
		Header: BlockHeader{Magic: MagicWord, Type: t, Size: uint16(len(data))},
		Data:   payload,
	}, nil
}

// EncodedSize is header, payload and checksum trailer.
func (b *GenericBlock) EncodedSize() int {
	return BlockHeaderSize + int(b.Header.Size) + BlockChecksumSize
}

// Checksum is Sum32 over the encoded header followed by the payload.
func (b *GenericBlock) Checksum() uint32 {
	return BlockChecksum(EncodeBlockHeader(b.Header), b.Data)
}

// BlockChecksum sums an encoded header and its payload.
func BlockChecksum(header, data []byte) uint32 {
	return Sum32(header) + Sum32(data)
}

// EncodeBlockHeader serializes h.
func EncodeBlockHeader(h BlockHeader) []byte {
	buf := make([]byte, BlockHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:], uint16(h.Type))
	binary.LittleEndian.PutUint16(buf[6:], h.Size)
	return buf
}

// DecodeBlockHeader parses a header. It does not check the magic word; the
// loader treats a mismatch as the end of the block list.
func DecodeBlockHeader(data []byte) (BlockHeader, error) {
	if len(data) < BlockHeaderSize {
		return BlockHeader{}, ErrShortBuffer
	}
	return BlockHeader{
		Magic: binary.LittleEndian.Uint32(data[0:]),
		Type:  BlockType(binary.LittleEndian.Uint16(data[4:])),
		Size:  binary.LittleEndian.Uint16(data[6:]),
	}, nil
}

// EncodeBlock serializes header, payload and a freshly computed checksum.
// The header magic is always written as MagicWord and the size follows the
// payload length.
func EncodeBlock(b *GenericBlock) []byte {
	h := b.Header
	h.Magic = MagicWord
	h.Size = uint16(len(b.Data))

	buf := make([]byte, 0, BlockHeaderSize+len(b.Data)+BlockChecksumSize)
	hdr := EncodeBlockHeader(h)
	buf = append(buf, hdr...)
	buf = append(buf, b.Data...)
	return binary.LittleEndian.AppendUint32(buf, BlockChecksum(hdr, b.Data))
}

// VerifyBlockChecksum compares a stored 32-bit trailer against the checksum
// of header and payload.
func VerifyBlockChecksum(header, data, trailer []byte) error {
	if len(trailer) < BlockChecksumSize {
		return ErrShortBuffer
	}
	stored := binary.LittleEndian.Uint32(trailer)
	if actual := BlockChecksum(header, data); actual != stored {
		return &ChecksumError{Width: 32, Expected: stored, Actual: actual}
	}
	return nil
}
