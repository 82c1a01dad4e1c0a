// memory.go - word-addressed memory unit (§4.2).
//
// A flat array of 32-bit words. Sub-word synthesis (shift/mask/sign
// extend) is the Memory stage's job, not this unit's; this unit only
// ever moves whole, aligned words.
package rv32pipe

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnalignedAddr is returned (wrapped in a *MemFault) when an address is
// not a multiple of 4.
var ErrUnalignedAddr = errors.New("memory: unaligned address")

// ErrMMUMiss is returned (wrapped in a *MemFault) when an address falls
// outside the configured memory size.
var ErrMMUMiss = errors.New("memory: address out of range")

// MemFault reports a failed Load/Store along with the architectural
// ExceptionKind the calling stage should raise.
type MemFault struct {
	Addr uint32
	Kind ExceptionKind
	err  error
}

func (f *MemFault) Error() string {
	return fmt.Sprintf("%s at address 0x%08x", f.err, f.Addr)
}

func (f *MemFault) Unwrap() error { return f.err }

func unalignedFault(addr uint32) error {
	return &MemFault{Addr: addr, Kind: ExcUnalignedAddr, err: ErrUnalignedAddr}
}

func mmuMissFault(addr uint32) error {
	return &MemFault{Addr: addr, Kind: ExcMMUMiss, err: ErrMMUMiss}
}

// Memory is a word-addressed memory unit. Byte address a maps to word
// index a/4. A store to address 0 is the shutdown sentinel.
type Memory struct {
	words    []uint32
	shutdown *bool
}

// NewMemory allocates a memory of the given word count. shutdown is the
// CPU's shutdown flag; a store to address 0 sets *shutdown = true.
func NewMemory(wordCount int, shutdown *bool) *Memory {
	return &Memory{
		words:    make([]uint32, wordCount),
		shutdown: shutdown,
	}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() int { return len(m.words) * 4 }

// Load reads the word at byte address addr.
func (m *Memory) Load(addr uint32) (uint32, error) {
	if addr%4 != 0 {
		return 0, unalignedFault(addr)
	}
	idx := addr / 4
	if int(idx) >= len(m.words) {
		return 0, mmuMissFault(addr)
	}
	return m.words[idx], nil
}

// Store writes d to the word at byte address addr. A store to address 0
// additionally sets the CPU's shutdown flag.
func (m *Memory) Store(addr, d uint32) error {
	if addr%4 != 0 {
		return unalignedFault(addr)
	}
	idx := addr / 4
	if int(idx) >= len(m.words) {
		return mmuMissFault(addr)
	}
	m.words[idx] = d
	if addr == 0 {
		*m.shutdown = true
	}
	return nil
}

// Image returns a little-endian byte-array marshaling of the word array
// (§6 "Memory image").
func (m *Memory) Image() []byte {
	out := make([]byte, len(m.words)*4)
	for i, w := range m.words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// LoadImage unmarshals a little-endian byte array into the word array. b
// must be a multiple of 4 bytes and no larger than the memory's capacity.
func (m *Memory) LoadImage(b []byte) error {
	if len(b)%4 != 0 {
		return fmt.Errorf("rv32pipe: image length %d is not a multiple of 4", len(b))
	}
	if len(b) > len(m.words)*4 {
		return fmt.Errorf("rv32pipe: image of %d bytes exceeds memory of %d bytes", len(b), len(m.words)*4)
	}
	for i := 0; i*4 < len(b); i++ {
		m.words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return nil
}
