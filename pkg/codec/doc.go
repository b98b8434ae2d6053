// Package codec encodes and decodes the factory configuration stored on a
// board's serial EEPROM.
//
// # Medium Layout
//
// All integers are little-endian. Offsets are relative to the start of the
// configuration region.
//
//	[magic(4)][version(4)][mac(6)][pad(2)][fpga(4)][spare(4)][serial(4)][model(32)]
//	[mac2(6)][pad(2)]                       only in version 1.3
//	[sum16(2)]                              additive sum of the record bytes
//	{[magic(4)][type(2)][size(2)][payload(size)][sum32(4)]}*
//	[0x00000000]                            terminator
//
// The magic word is 0x012C0138 for the record and for every block header.
// The version word is major<<16|minor. Versions 1.1 and 1.2 share the 60 byte
// layout; 1.3 appends a second MAC inline and is never written, readers move
// that MAC into a SecondaryMac generic block instead.
//
// # Checksums
//
// Both checksums are plain additive sums of byte values. The base record uses
// a 16-bit sum, generic blocks a 32-bit sum over header and payload. They are
// not interchangeable and already deployed boards depend on both widths.
//
// # Generic Blocks
//
// Blocks are self describing. A reader stops at the first header whose magic
// does not match and skips blocks of types it does not know, which lets newer
// tools add block types without breaking older boot loaders.
package codec
