// Package gitobj inflates and parses a single loose git object, and
// enumerates the objects inside a downloaded pack. Pack internals (delta
// reconstruction, index format) are delegated to go-git; this package only
// asks each decoded object for its type and referenced hashes.
package gitobj

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"fmt"
	"io"
)

// Type is one of the four object types git defines.
type Type string

const (
	Commit Type = "commit"
	Tree   Type = "tree"
	Blob   Type = "blob"
	Tag    Type = "tag"
)

// Object is an inflated loose object: its type and the bytes after the
// "<type> <size>\0" header.
type Object struct {
	Type Type
	Body []byte
}

// Parse inflates raw (the on-disk bytes under objects/xx/yyyy...), splits
// its header, and validates the declared type. Any type other than the four
// known ones is a fatal parse failure for the caller's task, never for the
// run as a whole.
func Parse(raw []byte) (*Object, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gitobj: inflating: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gitobj: reading inflated object: %w", err)
	}

	nul := bytes.IndexByte(data, 0)
	if nul < 0 {
		return nil, fmt.Errorf("gitobj: missing header terminator")
	}

	header := data[:nul]
	body := data[nul+1:]

	typ, _, ok := bytes.Cut(header, []byte(" "))
	if !ok {
		return nil, fmt.Errorf("gitobj: malformed header %q", header)
	}

	switch Type(typ) {
	case Commit, Tree, Blob, Tag:
		return &Object{Type: Type(typ), Body: body}, nil
	default:
		return nil, fmt.Errorf("gitobj: unexpected object type %q", typ)
	}
}

// References returns every hash this object points to: a commit's tree and
// parents, a tree's entry hashes, a tag's target. A blob has none.
func (o *Object) References() []string {
	switch o.Type {
	case Commit, Tag:
		return textReferences(o.Body)
	case Tree:
		return treeReferences(o.Body)
	default:
		return nil
	}
}

// textReferences scans a commit or tag body line by line: any line
// beginning "tree ", "parent ", or "object " contributes its second
// whitespace-delimited token.
func textReferences(body []byte) []string {
	var hashes []string
	for _, line := range bytes.Split(body, []byte("\n")) {
		for _, prefix := range [][]byte{[]byte("tree "), []byte("parent "), []byte("object ")} {
			if !bytes.HasPrefix(line, prefix) {
				continue
			}
			fields := bytes.Fields(line)
			if len(fields) >= 2 {
				hashes = append(hashes, string(fields[1]))
			}
		}
	}
	return hashes
}

// treeReferences repeatedly consumes "<mode> <name>\0<20-byte-hash>"
// records, hex-encoding each binary hash.
func treeReferences(body []byte) []string {
	var hashes []string
	for len(body) > 0 {
		nul := bytes.IndexByte(body, 0)
		if nul < 0 || nul+21 > len(body) {
			break
		}
		hash := body[nul+1 : nul+21]
		hashes = append(hashes, hex.EncodeToString(hash))
		body = body[nul+21:]
	}
	return hashes
}
