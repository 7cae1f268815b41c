// Package merkle commits to a fleet layout with a MiMC Merkle tree over the
// board's occupancy bits. Single cells can be opened against the commitment
// while the war goes on, and the whole layout is revealed once it is over.
package merkle

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// SaltSize keeps the salt below the BN254 field modulus.
const SaltSize = 31

// largest board a label can address is 26x99
const maxLeaves = 1 << 12

var (
	ErrTooManyLeaves  = errors.New("too many leaves for tree")
	ErrIndexOutOfTree = errors.New("leaf index out of tree")
	ErrBadSalt        = errors.New("salt must be 31 bytes")
)

// encode field elements as 32-byte big-endian blocks
func feBytes(x *big.Int) []byte {
	b := x.Bytes()
	if len(b) == 32 {
		return b
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func bytesToFE(b []byte) *big.Int { return new(big.Int).SetBytes(b) }

// HashLeaf hides one cell behind its own salt, so opening a cell says
// nothing about its neighbours.
func HashLeaf(bit uint8, salt *big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(new(big.Int).SetUint64(uint64(bit))))
	h.Write(feBytes(salt))
	return bytesToFE(h.Sum(nil))
}

func HashNode(left, right *big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(left))
	h.Write(feBytes(right))
	return bytesToFE(h.Sum(nil))
}

// leafSalt derives the salt of leaf idx from the tree salt.
func leafSalt(salt []byte, idx int) *big.Int {
	return HashNode(bytesToFE(salt), big.NewInt(int64(idx)))
}

// Tree is stored level by level: Levels[0] are leaves, the last level is the root.
type Tree struct {
	Depth  int
	Levels [][]*big.Int

	bits []uint8
	salt []byte
}

// BuildTree pads bits with empty-water leaves up to the next power of two.
func BuildTree(bits []uint8, salt []byte) (*Tree, error) {
	if len(salt) != SaltSize {
		return nil, ErrBadSalt
	}
	if len(bits) > maxLeaves {
		return nil, fmt.Errorf("%w: %d", ErrTooManyLeaves, len(bits))
	}
	size := 1
	for size < len(bits) {
		size *= 2
	}

	leaves := make([]*big.Int, size)
	for i := range leaves {
		var bit uint8
		if i < len(bits) {
			bit = bits[i]
		}
		leaves[i] = HashLeaf(bit, leafSalt(salt, i))
	}

	levels := [][]*big.Int{leaves}
	for n := size; n > 1; n /= 2 {
		prev := levels[len(levels)-1]
		up := make([]*big.Int, n/2)
		for i := range up {
			up[i] = HashNode(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, up)
	}
	return &Tree{
		Depth:  len(levels) - 1,
		Levels: levels,
		bits:   append([]uint8(nil), bits...),
		salt:   append([]byte(nil), salt...),
	}, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[t.Depth][0]) }

// Commitment is the root as 32 big-endian bytes.
func (t *Tree) Commitment() []byte { return feBytes(t.Root()) }

// Path returns sibling hashes and direction bits for leaf idx.
// dir[i]=0 means the current node is the left child.
func (t *Tree) Path(idx int) (path []*big.Int, dir []uint8, err error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return nil, nil, fmt.Errorf("%w: %d", ErrIndexOutOfTree, idx)
	}
	path = make([]*big.Int, 0, t.Depth)
	dir = make([]uint8, 0, t.Depth)
	cur := idx
	for level := 0; level < t.Depth; level++ {
		sib := cur + 1
		var d uint8
		if cur%2 == 1 {
			sib = cur - 1
			d = 1
		}
		path = append(path, new(big.Int).Set(t.Levels[level][sib]))
		dir = append(dir, d)
		cur /= 2
	}
	return path, dir, nil
}

// VerifyPath recomputes the root from one leaf and its path.
func VerifyPath(root *big.Int, bit uint8, salt *big.Int, path []*big.Int, dir []uint8) bool {
	if len(path) != len(dir) {
		return false
	}
	cur := HashLeaf(bit, salt)
	for i, sib := range path {
		if dir[i] == 0 {
			cur = HashNode(cur, sib)
		} else {
			cur = HashNode(sib, cur)
		}
	}
	return cur.Cmp(root) == 0
}

// Opening proves the content of one cell against a commitment.
type Opening struct {
	Index int      `json:"index"`
	Bit   uint8    `json:"bit"`
	Salt  string   `json:"salt"`
	Path  []string `json:"path"`
	Dir   []int    `json:"dir"`
}

// Open reveals leaf idx, its salt and its path. Padding leaves cannot be
// opened.
func (t *Tree) Open(idx int) (*Opening, error) {
	if idx < 0 || idx >= len(t.bits) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfTree, idx)
	}
	path, dir, err := t.Path(idx)
	if err != nil {
		return nil, err
	}
	o := &Opening{
		Index: idx,
		Bit:   t.bits[idx],
		Salt:  EncodeHex(feBytes(leafSalt(t.salt, idx))),
		Path:  make([]string, len(path)),
		Dir:   make([]int, len(dir)),
	}
	for i := range path {
		o.Path[i] = EncodeHex(feBytes(path[i]))
		o.Dir[i] = int(dir[i])
	}
	return o, nil
}

// VerifyOpening checks one opened cell against commitment.
func VerifyOpening(commitment []byte, o *Opening) bool {
	if o == nil || len(o.Path) != len(o.Dir) || o.Bit > 1 {
		return false
	}
	salt, err := DecodeHex(o.Salt)
	if err != nil {
		return false
	}
	path := make([]*big.Int, len(o.Path))
	dir := make([]uint8, len(o.Dir))
	for i := range o.Path {
		sib, err := DecodeHex(o.Path[i])
		if err != nil {
			return false
		}
		path[i] = bytesToFE(sib)
		if o.Dir[i] != 0 && o.Dir[i] != 1 {
			return false
		}
		dir[i] = uint8(o.Dir[i])
	}
	// the leaf position is fixed by the direction bits
	idx := 0
	for i := len(dir) - 1; i >= 0; i-- {
		idx = idx*2 + int(dir[i])
	}
	if idx != o.Index {
		return false
	}
	return VerifyPath(bytesToFE(commitment), o.Bit, bytesToFE(salt), path, dir)
}

// Commit returns the root of the salted tree over bits.
func Commit(bits []uint8, salt []byte) ([]byte, error) {
	t, err := BuildTree(bits, salt)
	if err != nil {
		return nil, err
	}
	return t.Commitment(), nil
}

func Verify(commitment []byte, bits []uint8, salt []byte) bool {
	got, err := Commit(bits, salt)
	if err != nil {
		return false
	}
	return bytes.Equal(got, commitment)
}

func EncodeHex(b []byte) string { return hex.EncodeToString(b) }

func DecodeHex(s string) ([]byte, error) { return hex.DecodeString(s) }
