package framing

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/tuomass/bittranspose-go/pkg/bittranspose"
)

const (
	// Magic is the 4-byte magic identifier for the frame format
	Magic = "BTP0"
	// HeaderSize is the total size of the frame header in bytes
	HeaderSize = 16
	// CurrentVersion is the current frame format version
	CurrentVersion = 0x01
)

var (
	// ErrInvalidMagic indicates the frame magic bytes don't match
	ErrInvalidMagic = errors.New("invalid frame magic")
	// ErrUnsupportedVersion indicates a frame written by a newer format
	ErrUnsupportedVersion = errors.New("unsupported frame version")
	// ErrInvalidLength indicates the payload length doesn't match the header
	ErrInvalidLength = errors.New("invalid payload length")
	// ErrCRCMismatch indicates the CRC32 checksum doesn't match
	ErrCRCMismatch = errors.New("CRC32 checksum mismatch")
	// ErrFrameTooShort indicates the frame is shorter than the header
	ErrFrameTooShort = errors.New("frame too short")
)

// Header describes a transposed payload.
// Byte layout:
//
//	0-3:   Magic ("BTP0")
//	4:     Version (0x01)
//	5:     Strands (2-8)
//	6-7:   Reserved (0x00 0x00)
//	8-11:  PayloadLength (big-endian uint32)
//	12-15: PayloadCRC32 (big-endian CRC32-IEEE)
type Header struct {
	Version       uint8
	Strands       uint8
	PayloadLength uint32
	PayloadCRC32  uint32
}

// BuildFrame prefixes an already transposed payload with its header.
func BuildFrame(payload []byte, strands int) ([]byte, error) {
	if _, err := bittranspose.InputLen(len(payload), strands); err != nil {
		return nil, err
	}

	frame := make([]byte, HeaderSize+len(payload))
	copy(frame[0:4], Magic)
	frame[4] = CurrentVersion
	frame[5] = uint8(strands)
	// Reserved bytes [6-7] are already 0x00
	binary.BigEndian.PutUint32(frame[8:12], uint32(len(payload)))
	binary.BigEndian.PutUint32(frame[12:16], crc32.ChecksumIEEE(payload))
	copy(frame[HeaderSize:], payload)

	return frame, nil
}

// ParseFrame validates a frame and returns its header and payload.
// The payload aliases frame.
func ParseFrame(frame []byte) (*Header, []byte, error) {
	if len(frame) < HeaderSize {
		return nil, nil, ErrFrameTooShort
	}
	if string(frame[0:4]) != Magic {
		return nil, nil, ErrInvalidMagic
	}

	header := &Header{
		Version:       frame[4],
		Strands:       frame[5],
		PayloadLength: binary.BigEndian.Uint32(frame[8:12]),
		PayloadCRC32:  binary.BigEndian.Uint32(frame[12:16]),
	}
	if header.Version != CurrentVersion {
		return nil, nil, ErrUnsupportedVersion
	}
	if uint64(len(frame)) != uint64(HeaderSize)+uint64(header.PayloadLength) {
		return nil, nil, ErrInvalidLength
	}
	payload := frame[HeaderSize:]

	// A header that passes the CRC can still carry a nonsense strand count.
	if _, err := bittranspose.InputLen(len(payload), int(header.Strands)); err != nil {
		return nil, nil, err
	}
	if crc32.ChecksumIEEE(payload) != header.PayloadCRC32 {
		return nil, nil, ErrCRCMismatch
	}

	return header, payload, nil
}
