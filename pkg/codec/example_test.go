package codec_test

import (
	"fmt"

	"github.com/ssargent/factoryconfig/pkg/codec"
)

// ExampleEncodeBase shows a base record with its checksum trailer.
func ExampleEncodeBase() {
	cfg := codec.DefaultBaseConfig()
	cfg.SerialNumber = 1001
	cfg.SetModel("5CSX-H6-42A")

	record := codec.AppendBaseChecksum(codec.EncodeBase(cfg))
	fmt.Printf("Encoded %d bytes\n", len(record))

	version, size, err := codec.Probe(record)
	if err != nil {
		fmt.Println(err)
		return
	}
	decoded, err := codec.DecodeBase(record, version)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := codec.VerifyBaseChecksum(record[:size], record[size:]); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("Version: %s\n", decoded.VersionString())
	fmt.Printf("Serial: %d\n", decoded.SerialNumber)
	fmt.Printf("Model: %s\n", decoded.Model())

	// Output:
	// Encoded 62 bytes
	// Version: 1.2
	// Serial: 1001
	// Model: 5CSX-H6-42A
}

// ExampleEncodeBlock shows a generic block carrying an RTC calibration.
func ExampleEncodeBlock() {
	block, err := codec.NewBlock(codec.BlockRtcCalibration, codec.EncodeRtcCalPayload(-35))
	if err != nil {
		fmt.Println(err)
		return
	}

	encoded := codec.EncodeBlock(block)
	header, _ := codec.DecodeBlockHeader(encoded)
	value, _ := codec.DecodeRtcCalPayload(encoded[codec.BlockHeaderSize:])

	fmt.Printf("Encoded %d bytes\n", len(encoded))
	fmt.Printf("Type: %s, Size: %d\n", header.Type, header.Size)
	fmt.Printf("Value: %d\n", value)

	// Output:
	// Encoded 16 bytes
	// Type: RtcCalibration, Size: 4
	// Value: -35
}
