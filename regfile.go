// regfile.go - the 32-entry general register file (§3).
package rv32pipe

// NumRegisters is the number of architectural general-purpose registers.
const NumRegisters = 32

// RegisterFile holds the 32 general registers. Register 0 always reads
// as zero; writes to it are accepted and discarded.
type RegisterFile struct {
	regs [NumRegisters]uint32
}

// Read returns the value of register idx (idx & 0x1F is applied by
// callers via the 5-bit field extraction; out-of-range values here would
// be a decoder bug, not a runtime condition).
func (r *RegisterFile) Read(idx uint32) uint32 {
	if idx == 0 {
		return 0
	}
	return r.regs[idx]
}

// Write sets register idx to value. Writes to register 0 are accepted
// and then immediately cleared, rather than branched around, so x0
// always reads as zero regardless of idx.
func (r *RegisterFile) Write(idx, value uint32) {
	r.regs[idx] = value
	r.regs[0] = 0
}

// Snapshot returns a copy of all 32 registers, for diagnostics.
func (r *RegisterFile) Snapshot() [NumRegisters]uint32 {
	return r.regs
}
