// stage_memory.go - Memory stage logic (§4.6): sub-word load synthesis
// and stores.
package rv32pipe

import "errors"

// MemoryState is Memory's own latched state.
type MemoryState struct {
	RegWrite   bool
	MemWrite   bool
	MemOp      MemOp
	MemSignExt bool
	ResSrc     ResSrc
	RegAddr    uint32
	PC         uint32
	PCNext     uint32
	AluRes     uint32
	MemWdata   uint32
}

// tickMemory performs the actual Store (if any), synthesizes a sub-word
// Load result from the word the memory unit returns, and deposits
// Writeback's write latch.
func (c *CPU) tickMemory() {
	mem := c.Memory.read

	var loadRes uint32
	if mem.ResSrc == ResMEM {
		loadRes = c.loadSubWord(mem)
	}
	if mem.MemWrite {
		// The memory unit only ever stores whole words; a sub-word
		// store that isn't naturally word-aligned faults instead of
		// being lowered to a masked word operation.
		if err := c.Mem.Store(mem.AluRes, mem.MemWdata); err != nil {
			c.raiseMemFault(err, mem.PC)
		}
	}

	var resWdata uint32
	switch mem.ResSrc {
	case ResMEM:
		resWdata = loadRes
	case ResPC:
		resWdata = mem.PCNext
	default:
		resWdata = mem.AluRes
	}

	c.Writeback.write.RegWrite = mem.RegWrite
	c.Writeback.write.RegAddr = mem.RegAddr
	c.Writeback.write.RegWdata = resWdata
}

// loadSubWord issues the aligned word load at aluRes&^3, then shifts
// and narrows it per memOp. The alignment fault is checked against the
// sub-word's own alignment requirement (sh mod align != 0), not the
// underlying word-level alignment the memory unit itself enforces.
func (c *CPU) loadSubWord(mem MemoryState) uint32 {
	addr := mem.AluRes
	sh := addr & 3

	var align uint32
	switch mem.MemOp {
	case MemHALF:
		align = 2
	case MemBYTE:
		align = 1
	default:
		align = 4
	}
	if sh%align != 0 {
		c.hz.raise(StageMemory, ExcUnalignedAddr, mem.PC)
		return 0
	}

	word, err := c.Mem.Load(addr &^ 3)
	if err != nil {
		c.raiseMemFault(err, mem.PC)
		return 0
	}

	shifted := word >> (sh * 8)
	switch mem.MemOp {
	case MemBYTE:
		b := shifted & 0xFF
		if mem.MemSignExt {
			return uint32(int32(int8(b)))
		}
		return b
	case MemHALF:
		h := shifted & 0xFFFF
		if mem.MemSignExt {
			return uint32(int32(int16(h)))
		}
		return h
	default:
		return shifted
	}
}

func (c *CPU) raiseMemFault(err error, pc uint32) {
	var fault *MemFault
	if errors.As(err, &fault) {
		c.hz.raise(StageMemory, fault.Kind, pc)
	}
}
