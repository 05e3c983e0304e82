package seqio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	abifMagic      = "ABIF"
	macBinaryBytes = 128
	headerBytes    = 34 // magic + version + root entry
	entryBytes     = 28
)

// ABIF element types used by the tags we read.
const (
	elemChar    = 2
	elemPString = 18
	elemCString = 19
)

// Trace is the subset of an ABIF capillary trace needed to produce a read.
type Trace struct {
	SampleName string
	Version    uint16
	Bases      string // called bases, upper case
	Qualities  []int  // phred values, nil when the trace carries none
}

type dirEntry struct {
	name     string
	number   int32
	elemType uint16
	elemSize int16
	numElems int32
	dataSize int32
	offset   []byte // the raw 4-byte offset field, holds the data itself when dataSize <= 4
}

func (e dirEntry) key() string { return fmt.Sprintf("%s%d", e.name, e.number) }

// data resolves the payload of an entry against the ABIF block starting at base.
func (e dirEntry) data(buf []byte, base int) ([]byte, error) {
	if e.dataSize < 0 {
		return nil, fmt.Errorf("%w: tag %s has negative size", ErrMalformedTrace, e.key())
	}
	if e.dataSize <= 4 {
		return e.offset[:e.dataSize], nil
	}
	start := base + int(binary.BigEndian.Uint32(e.offset))
	end := start + int(e.dataSize)
	if start < base || end > len(buf) || end < start {
		return nil, fmt.Errorf("%w: tag %s points outside the file", ErrMalformedTrace, e.key())
	}
	return buf[start:end], nil
}

// ReadTraceFile decodes the ABIF file at path.
func ReadTraceFile(path string) (*Trace, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParseTrace(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadTrace decodes an ABIF container from r.
func ReadTrace(r io.Reader) (*Trace, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseTrace(buf)
}

// ParseTrace decodes an in-memory ABIF container. The magic is accepted at
// offset 0 or after a 128-byte MacBinary header; data offsets are relative to
// the magic. Bases come from PBAS2 (edited) or PBAS1, qualities from PCON2 or
// PCON1, the sample name from SMPL1.
func ParseTrace(buf []byte) (*Trace, error) {
	base := 0
	if !bytes.HasPrefix(buf, []byte(abifMagic)) {
		if len(buf) >= macBinaryBytes+len(abifMagic) && bytes.Equal(buf[macBinaryBytes:macBinaryBytes+4], []byte(abifMagic)) {
			base = macBinaryBytes
		} else {
			return nil, fmt.Errorf("%w: missing ABIF magic", ErrMalformedTrace)
		}
	}
	if len(buf) < base+headerBytes {
		return nil, fmt.Errorf("%w: truncated header", ErrMalformedTrace)
	}

	version := binary.BigEndian.Uint16(buf[base+4:])
	root := parseEntry(buf[base+6 : base+6+entryBytes])
	if root.numElems < 0 {
		return nil, fmt.Errorf("%w: negative directory size", ErrMalformedTrace)
	}

	dirStart := base + int(binary.BigEndian.Uint32(root.offset))
	dirEnd := dirStart + int(root.numElems)*entryBytes
	if dirStart < base || dirEnd > len(buf) || dirEnd < dirStart {
		return nil, fmt.Errorf("%w: directory outside the file", ErrMalformedTrace)
	}

	tags := make(map[string]dirEntry, root.numElems)
	for off := dirStart; off < dirEnd; off += entryBytes {
		e := parseEntry(buf[off : off+entryBytes])
		tags[e.key()] = e
	}

	t := &Trace{Version: version}

	pbas, ok := firstTag(tags, "PBAS2", "PBAS1")
	if !ok {
		return nil, fmt.Errorf("%w: no called bases (PBAS)", ErrMalformedTrace)
	}
	raw, err := pbas.data(buf, base)
	if err != nil {
		return nil, err
	}
	t.Bases = normalize(string(raw))

	if pcon, ok := firstTag(tags, "PCON2", "PCON1"); ok {
		raw, err := pcon.data(buf, base)
		if err != nil {
			return nil, err
		}
		if len(raw) != len(t.Bases) {
			return nil, fmt.Errorf("%w: %d qualities for %d bases", ErrMalformedTrace, len(raw), len(t.Bases))
		}
		t.Qualities = make([]int, len(raw))
		for i, q := range raw {
			t.Qualities[i] = int(q)
		}
	}

	if smpl, ok := tags["SMPL1"]; ok {
		raw, err := smpl.data(buf, base)
		if err != nil {
			return nil, err
		}
		t.SampleName = decodeString(smpl.elemType, raw)
	}

	return t, nil
}

func parseEntry(b []byte) dirEntry {
	return dirEntry{
		name:     string(b[0:4]),
		number:   int32(binary.BigEndian.Uint32(b[4:8])),
		elemType: binary.BigEndian.Uint16(b[8:10]),
		elemSize: int16(binary.BigEndian.Uint16(b[10:12])),
		numElems: int32(binary.BigEndian.Uint32(b[12:16])),
		dataSize: int32(binary.BigEndian.Uint32(b[16:20])),
		offset:   b[20:24],
	}
}

func firstTag(tags map[string]dirEntry, keys ...string) (dirEntry, bool) {
	for _, k := range keys {
		if e, ok := tags[k]; ok {
			return e, true
		}
	}
	return dirEntry{}, false
}

func decodeString(elemType uint16, raw []byte) string {
	switch elemType {
	case elemPString:
		if len(raw) == 0 {
			return ""
		}
		n := int(raw[0])
		if n > len(raw)-1 {
			n = len(raw) - 1
		}
		return string(raw[1 : 1+n])
	case elemCString:
		return string(bytes.TrimRight(raw, "\x00"))
	default:
		return string(raw)
	}
}
