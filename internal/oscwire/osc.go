// Package oscwire implements the Open Sound Control wire codec used for
// both control ingress and output framing: an address pattern, a
// typetag string, and a sequence of int32/float32/string arguments,
// hand-rolled over encoding/binary rather than an external OSC module.
package oscwire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformed is returned for any datagram that does not parse as a
// well-formed OSC message.
var ErrMalformed = errors.New("oscwire: malformed message")

// Message is one decoded OSC packet: an address pattern plus its
// type-tagged arguments, in wire order.
type Message struct {
	Address string
	Args    []interface{} // int32, float32, string, or []byte (blob)
}

// Encode serializes m into an OSC datagram.
func (m Message) Encode() []byte {
	var buf bytes.Buffer
	writeOSCString(&buf, m.Address)

	tags := []byte{','}
	for _, a := range m.Args {
		switch a.(type) {
		case int32:
			tags = append(tags, 'i')
		case float32:
			tags = append(tags, 'f')
		case string:
			tags = append(tags, 's')
		case []byte:
			tags = append(tags, 'b')
		default:
			tags = append(tags, 'i')
		}
	}
	writeOSCString(&buf, string(tags))

	for _, a := range m.Args {
		switch v := a.(type) {
		case int32:
			binary.Write(&buf, binary.BigEndian, v)
		case float32:
			binary.Write(&buf, binary.BigEndian, v)
		case string:
			writeOSCString(&buf, v)
		case []byte:
			writeOSCBlob(&buf, v)
		default:
			binary.Write(&buf, binary.BigEndian, int32(0))
		}
	}
	return buf.Bytes()
}

// writeOSCBlob writes a length-prefixed byte blob padded to a 4-byte
// boundary, the OSC-blob encoding.
func writeOSCBlob(buf *bytes.Buffer, b []byte) {
	binary.Write(buf, binary.BigEndian, int32(len(b)))
	buf.Write(b)
	if pad := (4 - len(b)%4) % 4; pad != 0 {
		buf.Write(make([]byte, pad))
	}
}

// writeOSCString writes s null-terminated and padded to a 4-byte
// boundary, the OSC-string encoding.
func writeOSCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	pad := 4 - (len(s) % 4)
	if pad == 0 {
		pad = 4
	}
	buf.Write(make([]byte, pad))
}

// Decode parses raw into a Message, or returns ErrMalformed.
func Decode(raw []byte) (Message, error) {
	addr, rest, err := readOSCString(raw)
	if err != nil {
		return Message{}, err
	}
	if addr == "" || addr[0] != '/' {
		return Message{}, ErrMalformed
	}

	tagStr, rest, err := readOSCString(rest)
	if err != nil {
		return Message{}, err
	}
	if len(tagStr) == 0 || tagStr[0] != ',' {
		return Message{}, ErrMalformed
	}
	tags := tagStr[1:]

	args := make([]interface{}, 0, len(tags))
	for _, tag := range tags {
		switch tag {
		case 'i':
			if len(rest) < 4 {
				return Message{}, ErrMalformed
			}
			v := int32(binary.BigEndian.Uint32(rest[:4]))
			args = append(args, v)
			rest = rest[4:]
		case 'f':
			if len(rest) < 4 {
				return Message{}, ErrMalformed
			}
			bits := binary.BigEndian.Uint32(rest[:4])
			args = append(args, math.Float32frombits(bits))
			rest = rest[4:]
		case 's':
			s, r, err := readOSCString(rest)
			if err != nil {
				return Message{}, err
			}
			args = append(args, s)
			rest = r
		case 'b':
			if len(rest) < 4 {
				return Message{}, ErrMalformed
			}
			n := int(binary.BigEndian.Uint32(rest[:4]))
			rest = rest[4:]
			if n < 0 || n > len(rest) {
				return Message{}, ErrMalformed
			}
			blob := make([]byte, n)
			copy(blob, rest[:n])
			total := n
			if pad := (4 - total%4) % 4; pad != 0 {
				total += pad
			}
			if total > len(rest) {
				return Message{}, ErrMalformed
			}
			args = append(args, blob)
			rest = rest[total:]
		default:
			return Message{}, fmt.Errorf("oscwire: unsupported typetag %q: %w", tag, ErrMalformed)
		}
	}

	return Message{Address: addr, Args: args}, nil
}

func readOSCString(b []byte) (string, []byte, error) {
	idx := bytes.IndexByte(b, 0)
	if idx < 0 {
		return "", nil, ErrMalformed
	}
	s := string(b[:idx])
	total := idx + 1
	if total%4 != 0 {
		total += 4 - total%4
	}
	if total > len(b) {
		return "", nil, ErrMalformed
	}
	return s, b[total:], nil
}
