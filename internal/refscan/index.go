package refscan

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
)

// IndexEntry is one parsed entry from the DIRC staging index. The core only
// consumes Hash; every other field exists so the cursor advances correctly
// past version-2/3 entries of varying name-encoding.
type IndexEntry struct {
	CTimeSec, CTimeNsec uint32
	MTimeSec, MTimeNsec uint32
	Dev, Ino            uint32
	Mode                uint32
	UID, GID            uint32
	Size                uint32
	Hash                string // hex-encoded, 40 chars
	Flags               uint16
	ExtendedFlags       uint16
	Path                string
}

const indexHeaderLen = 12
const indexEntryFixedLen = 4*10 + 20 + 2 // ctime(sec,nsec),mtime(sec,nsec),dev,ino,mode,uid,gid,size (4 bytes x 10) + hash(20) + flags(2)

// ParseIndex decodes a DIRC-format staging index (version 2 or 3). A
// truncated header or truncated entry does not error -- it simply stops and
// returns whatever entries were fully parsed, so a corrupted index yields
// zero hashes instead of crashing the discovery phase.
func ParseIndex(data []byte) []IndexEntry {
	if len(data) < indexHeaderLen || !bytes.Equal(data[:4], []byte("DIRC")) {
		return nil
	}

	version := binary.BigEndian.Uint32(data[4:8])
	count := binary.BigEndian.Uint32(data[8:12])

	pos := indexHeaderLen
	entries := make([]IndexEntry, 0, count)

	for i := uint32(0); i < count; i++ {
		start := pos
		if pos+indexEntryFixedLen > len(data) {
			break
		}

		e := IndexEntry{}
		e.CTimeSec = beUint32(data, &pos)
		e.CTimeNsec = beUint32(data, &pos)
		e.MTimeSec = beUint32(data, &pos)
		e.MTimeNsec = beUint32(data, &pos)
		e.Dev = beUint32(data, &pos)
		e.Ino = beUint32(data, &pos)
		e.Mode = beUint32(data, &pos)
		e.UID = beUint32(data, &pos)
		e.GID = beUint32(data, &pos)
		e.Size = beUint32(data, &pos)
		e.Hash = hex.EncodeToString(data[pos : pos+20])
		pos += 20
		e.Flags = binary.BigEndian.Uint16(data[pos : pos+2])
		pos += 2

		if version >= 3 && e.Flags&0x4000 != 0 {
			if pos+2 > len(data) {
				break
			}
			e.ExtendedFlags = binary.BigEndian.Uint16(data[pos : pos+2])
			pos += 2
		}

		nameLen := int(e.Flags & 0xFFF)
		if nameLen == 0xFFF {
			nul := bytes.IndexByte(data[pos:], 0)
			if nul < 0 {
				break
			}
			e.Path = string(data[pos : pos+nul])
			pos += nul + 1
		} else {
			if pos+nameLen > len(data) {
				break
			}
			e.Path = string(data[pos : pos+nameLen])
			pos += nameLen
		}

		// Entries are NUL-padded so the total entry length (from start,
		// counting the fixed fields and name) is a multiple of 8, with at
		// least one padding byte always present.
		consumed := pos - start
		pad := 8 - (consumed % 8)
		pos += pad
		if pos > len(data) {
			break
		}

		entries = append(entries, e)
	}

	return entries
}

func beUint32(data []byte, pos *int) uint32 {
	v := binary.BigEndian.Uint32(data[*pos : *pos+4])
	*pos += 4
	return v
}

// Hashes returns every entry's object hash, the only thing object discovery
// needs from the index.
func Hashes(entries []IndexEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Hash
	}
	return out
}
