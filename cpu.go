// cpu.go - the CPU aggregate: configuration, construction, the
// top-level tick loop, and the exported observation surface (§4.9, §6).
package rv32pipe

import "fmt"

// sentinelTrap is the encoding of SW x0, 0(x0): a store to address 0,
// which always sets the shutdown flag regardless of what is in x0.
const sentinelTrap Word = 0x00002023

// Config carries the construction parameters from §6.
type Config struct {
	// MemWords is the memory size in 32-bit words.
	MemWords int
	// TrapVector is the byte address the trap handler lives at. Must
	// leave four consecutive in-range words for the sentinel.
	TrapVector uint32
}

// DefaultConfig returns the spec's defaults: 4096 bytes (1024 words) of
// memory, trap vector at memSize-16.
func DefaultConfig() Config {
	const memWords = 1024
	return Config{
		MemWords:   memWords,
		TrapVector: uint32(memWords*4 - 16),
	}
}

// CPU aggregates the five pipeline stages, the hazard unit, the memory
// unit, and the register file.
type CPU struct {
	Fetch     Latch[FetchState]
	Decode    Latch[DecodeState]
	Execute   Latch[ExecuteState]
	Memory    Latch[MemoryState]
	Writeback Latch[WritebackState]

	Regs RegisterFile
	Mem  *Memory
	hz   hazardUnit

	tvec     uint32
	shutdown bool
	cycles   uint64

	// exRedirect/exJumpBase are the current cycle's Execute-stage
	// redirect signal and jump base, produced by tickExecute and
	// consumed by tickFetch and the hazard unit within the same tick.
	// They are not part of any (read,write) latch pair because they
	// are pure same-cycle combinational outputs, never latched state.
	exRedirect bool
	exJumpBase uint32
}

// NewCPU constructs a CPU with the given configuration. The memory is
// allocated and the sentinel trap handler is written at cfg.TrapVector.
func NewCPU(cfg Config) (*CPU, error) {
	if cfg.MemWords <= 0 {
		return nil, fmt.Errorf("rv32pipe: MemWords must be positive, got %d", cfg.MemWords)
	}
	memBytes := uint32(cfg.MemWords * 4)
	if cfg.TrapVector%4 != 0 || cfg.TrapVector > memBytes-16 {
		return nil, fmt.Errorf("rv32pipe: TrapVector 0x%x does not leave four in-range words in a %d-byte memory", cfg.TrapVector, memBytes)
	}

	c := &CPU{tvec: cfg.TrapVector}
	c.Mem = NewMemory(cfg.MemWords, &c.shutdown)
	c.Decode.read.V = true
	c.Decode.write.V = true

	for i := uint32(0); i < 4; i++ {
		if err := c.Mem.Store(cfg.TrapVector+i*4, sentinelTrap); err != nil {
			return nil, fmt.Errorf("rv32pipe: writing sentinel trap handler: %w", err)
		}
	}

	return c, nil
}

// LoadImage loads an initial memory image, byte-for-byte, before
// execution begins.
func (c *CPU) LoadImage(b []byte) error {
	return c.Mem.LoadImage(b)
}

// Execute seeds Fetch's PC and runs the tick loop until shutdown.
func (c *CPU) Execute(pc uint32) {
	c.Fetch.read.PC = pc
	c.Fetch.write.PC = pc
	for !c.shutdown {
		c.tick()
	}
}

// tick runs one full pipeline cycle: every stage's combinational logic
// in back-to-front order, then the hazard unit, which applies
// stalls/flushes and owns every latch commit.
func (c *CPU) tick() {
	c.tickWriteback()
	c.tickMemory()
	c.tickExecute()
	c.tickDecode()
	c.tickFetch()
	c.hz.run(c)
	c.cycles++
}

// Registers returns a snapshot of the 32 general registers.
func (c *CPU) Registers() [NumRegisters]uint32 {
	return c.Regs.Snapshot()
}

// PC returns Fetch's current program counter.
func (c *CPU) PC() uint32 {
	return c.Fetch.read.PC
}

// Shutdown reports whether the CPU has halted.
func (c *CPU) Shutdown() bool {
	return c.shutdown
}

// Cycles returns the number of ticks executed so far.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// LastException returns the last (stage, kind, pc) the hazard unit
// recorded. The stage field reflects the raising stage; it is not
// cleared by subsequent fault-free cycles.
func (c *CPU) LastException() Exception {
	return Exception{
		Stage: c.hz.lastStage,
		Kind:  c.hz.pendingKind,
		PC:    c.hz.pendingPC,
	}
}

// LastExitReason classifies the last recorded exception as a short,
// human-readable string.
func (c *CPU) LastExitReason() string {
	switch c.hz.pendingKind {
	case ExcBadOpcode:
		return "bad-opcode"
	case ExcUnalignedAddr:
		return "unaligned-address"
	case ExcMMUMiss:
		return "mmu-miss"
	case ExcInterrupt:
		return c.interruptExitReason()
	default:
		return "none"
	}
}

// interruptExitReason distinguishes ECALL from EBREAK for an interrupt
// exception by re-reading the trapping instruction's imm11_0 field.
func (c *CPU) interruptExitReason() string {
	word, err := c.Mem.Load(c.hz.pendingPC)
	if err != nil {
		return "interrupt"
	}
	switch Imm110(word) {
	case 1:
		return "ebreak"
	case 0:
		return "ecall"
	default:
		return "interrupt"
	}
}
