package gitobj

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/packfile"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// PackContents is the result of enumerating one pack: the hashes of every
// object actually stored in the pack (the "packed" set, pre-seeded into the
// work queue's SeenSet so those objects are never re-fetched individually),
// and every hash those objects reference (fetch candidates, same as a
// loose object's References()).
type PackContents struct {
	Packed     []string
	Referenced []string
}

// EnumeratePack delegates delta reconstruction and index lookups to go-git:
// it decodes the pack into an in-memory object storer, then walks every
// resulting object asking it for referenced hashes exactly as Parse/
// References does for loose objects. packPath and idxPath must both already
// be on disk; idxPath is only checked for existence and its contents are
// never read -- go-git's packfile decoder resolves internal deltas from the
// pack itself.
func EnumeratePack(packPath, idxPath string) (*PackContents, error) {
	if _, err := os.Stat(idxPath); err != nil {
		return nil, fmt.Errorf("gitobj: pack index %s: %w", idxPath, err)
	}

	f, err := os.Open(packPath)
	if err != nil {
		return nil, fmt.Errorf("gitobj: opening pack %s: %w", packPath, err)
	}
	defer f.Close()

	storer := memory.NewStorage()
	scanner := packfile.NewScanner(f)
	decoder, err := packfile.NewDecoder(scanner, storer)
	if err != nil {
		return nil, fmt.Errorf("gitobj: building pack decoder: %w", err)
	}
	if _, err := decoder.Decode(); err != nil {
		return nil, fmt.Errorf("gitobj: decoding pack %s: %w", packPath, err)
	}

	iter, err := storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return nil, fmt.Errorf("gitobj: iterating pack objects: %w", err)
	}

	contents := &PackContents{}
	err = iter.ForEach(func(enc plumbing.EncodedObject) error {
		contents.Packed = append(contents.Packed, enc.Hash().String())

		decoded, err := object.DecodeObject(storer, enc)
		if err != nil {
			// A pack can legitimately contain blobs, which object.DecodeObject
			// also handles; any other decode failure is not reported and
			// simply yields no further references for this object.
			return nil
		}

		switch o := decoded.(type) {
		case *object.Commit:
			contents.Referenced = append(contents.Referenced, o.TreeHash.String())
			for _, p := range o.ParentHashes {
				contents.Referenced = append(contents.Referenced, p.String())
			}
		case *object.Tree:
			for _, e := range o.Entries {
				contents.Referenced = append(contents.Referenced, e.Hash.String())
			}
		case *object.Tag:
			contents.Referenced = append(contents.Referenced, o.Target.String())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gitobj: walking pack objects: %w", err)
	}

	return contents, nil
}
