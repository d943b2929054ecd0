package message

import (
	"bytes"
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-ncfilter/internal/binary"
)

// Type represents an HDF5 header message type.
type Type uint16

// Header message types handled by this package.
const (
	TypeDataLayout     Type = 0x0008
	TypeFilterPipeline Type = 0x000B
)

// Message is the interface implemented by all header messages.
type Message interface {
	Type() Type
}

// Serializable is the interface for messages that can be serialized to bytes.
type Serializable interface {
	Message
	// Serialize writes the message to the writer.
	Serialize(w *binpkg.Writer) error
	// SerializedSize returns the size in bytes when serialized.
	SerializedSize() int
}

// Encode serializes a message into a fresh little-endian byte slice.
func Encode(msg Serializable) ([]byte, error) {
	var buf binpkg.Buffer
	w := binpkg.NewWriter(&buf, binary.LittleEndian)
	if err := msg.Serialize(w); err != nil {
		return nil, err
	}
	if buf.Len() != msg.SerializedSize() {
		return nil, fmt.Errorf("message 0x%04X: wrote %d bytes, expected %d", uint16(msg.Type()), buf.Len(), msg.SerializedSize())
	}
	return buf.Bytes(), nil
}

// Decode parses a message of the given type from raw bytes.
func Decode(typ Type, data []byte) (Message, error) {
	r := binpkg.NewReader(bytes.NewReader(data), binary.LittleEndian)
	switch typ {
	case TypeFilterPipeline:
		return ParseFilterPipeline(r)
	default:
		return &Unknown{MsgType: typ, Data: data}, nil
	}
}

// Unknown holds the raw bytes of a message type this package does not parse.
type Unknown struct {
	MsgType Type
	Data    []byte
}

func (m *Unknown) Type() Type { return m.MsgType }
