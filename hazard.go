// hazard.go - the Hazard Unit (§4.8): load-use stalling, control-flow
// flushing, forwarding resolution, and exception aggregation.
//
// The unit runs last in a tick and owns every stage's commit: it is the
// only place Latch.Tick is called. Commits proceed back-to-front (WB,
// MEM, EX, DE, IF) so that the stall/flush decisions made here, which
// depend on this cycle's completed write latches, are applied before
// each latch's read becomes visible for the next cycle.
package rv32pipe

// ForwardSrc names where Execute should source a source-register value
// from: the value Decode already latched, or a bypass from a younger
// result still in flight.
type ForwardSrc int

const (
	FwdReg ForwardSrc = iota
	FwdMem
	FwdWb
)

// hazardUnit tracks the single highest-priority exception raised during
// the current cycle. pendingStage resets to StageNone at the end of
// every run (§4.8 step 8); pendingKind/pendingPC are left as-is so they
// remain externally readable between ticks and after shutdown.
type hazardUnit struct {
	pendingStage Stage
	pendingKind  ExceptionKind
	pendingPC    uint32

	// lastStage mirrors pendingStage at the moment step 8 clears it,
	// so the stage-at-raise stays externally readable (§6) even though
	// pendingStage itself must reset to StageNone every cycle to drive
	// next cycle's priority comparisons.
	lastStage Stage
}

// raise records an exception if it outranks whatever is already
// pending this cycle. A later stage always outranks an earlier one, so
// an Execute-stage interrupt raised after a Decode-stage bad-opcode in
// the same cycle correctly wins; ties keep the most recent raiser.
func (h *hazardUnit) raise(stage Stage, kind ExceptionKind, pc uint32) {
	if stage >= h.pendingStage {
		h.pendingStage = stage
		h.pendingKind = kind
		h.pendingPC = pc
	}
}

// forwardSource resolves where Execute should read register regAddr's
// value from, preferring the freshest in-flight result: Memory's ALU
// result outranks Writeback's pending commit, which outranks the value
// Decode already latched from the register file. rsa = 0 always
// resolves to REG since x0 writes are never actually committed.
func (h *hazardUnit) forwardSource(c *CPU, regAddr uint32) ForwardSrc {
	if regAddr == 0 {
		return FwdReg
	}
	if c.Memory.read.RegWrite && c.Memory.read.RegAddr == regAddr {
		return FwdMem
	}
	if c.Writeback.read.RegWrite && c.Writeback.read.RegAddr == regAddr {
		return FwdWb
	}
	return FwdReg
}

// run executes the §4.8 per-tick algorithm. It must be called after
// every stage's tick* has run (so loadHazard/pcFlush and all write
// latches reflect this cycle's work) and owns committing every latch.
func (h *hazardUnit) run(c *CPU) {
	loadHazard := h.loadUseHazard(c)
	pcFlush := c.exRedirect

	// Step 2: an instruction being squashed this cycle anyway should
	// not have its exception survive to be reported as the cause.
	if (loadHazard || pcFlush) && h.pendingStage != StageNone && h.pendingStage <= StageDecode {
		h.pendingStage = StageNone
	}

	// Step 3.
	if h.pendingStage >= StageMemory {
		c.Writeback.write.RegWrite = false
	}
	c.Writeback.Tick()

	// Step 4.
	if h.pendingStage >= StageExecute {
		c.Memory.write.RegWrite = false
		c.Memory.write.MemWrite = false
		c.Memory.write.ResSrc = ResALU
	}
	c.Memory.Tick()

	// Step 5.
	if h.pendingStage >= StageDecode || loadHazard || pcFlush {
		c.Execute.write = ExecuteState{}
	}
	c.Execute.Tick()

	// Step 6.
	if h.pendingStage >= StageFetch || pcFlush {
		c.Decode.write.V = true
		c.Decode.Tick()
	} else if !loadHazard {
		c.Decode.Tick()
	}

	// Step 7.
	if h.pendingStage != StageNone {
		c.Fetch.write.PC = c.tvec
		c.Fetch.Tick()
	} else if !loadHazard {
		c.Fetch.Tick()
	}

	// Step 8.
	if h.pendingStage != StageNone {
		h.lastStage = h.pendingStage
	}
	h.pendingStage = StageNone
}

// loadUseHazard reports whether the instruction now sitting in
// Execute.read is a load whose destination the instruction Decode just
// produced (now sitting in Execute.write) needs as a source operand.
func (h *hazardUnit) loadUseHazard(c *CPU) bool {
	prev := c.Execute.read
	next := c.Execute.write
	if prev.Ctrl.ResSrc != ResMEM || prev.Rda == 0 {
		return false
	}
	return prev.Rda == next.Rs1a || prev.Rda == next.Rs2a
}
