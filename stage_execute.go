// stage_execute.go - Execute stage logic (§4.5): forwarding, ALU,
// compare, and branch/jump target resolution.
package rv32pipe

// ExecuteState is Execute's own latched state.
type ExecuteState struct {
	Ctrl   Control
	PC     uint32
	PCNext uint32
	Rs1v   uint32
	Rs2v   uint32
	ImmExt int32
	Rs1a   uint32
	Rs2a   uint32
	Rda    uint32
}

// tickExecute resolves forwarded operands, computes the ALU/compare
// results and the redirect target, and deposits Memory's write latch.
// It also sets the transient per-cycle redirect signal consumed this
// same tick by Fetch and by the Hazard Unit.
func (c *CPU) tickExecute() {
	ex := c.Execute.read

	rs1v := ex.Rs1v
	if src := c.hz.forwardSource(c, ex.Rs1a); src != FwdReg {
		rs1v = c.forwardedValue(src)
	}
	rs2v := ex.Rs2v
	if src := c.hz.forwardSource(c, ex.Rs2a); src != FwdReg {
		rs2v = c.forwardedValue(src)
	}

	var jumpBase uint32
	if ex.Ctrl.IsJumpReg {
		jumpBase = rs1v &^ uint32(1)
	} else {
		jumpBase = ex.PC
	}

	// Store data is fixed to the (forwarded) register value before any
	// immediate substitution below, even when the ALU itself consumes
	// the immediate to compute the store address.
	c.Memory.write.MemWdata = rs2v

	sv1 := rs1v
	if ex.Ctrl.AluSrc1 == AluSrcPC {
		sv1 = ex.PC
	}
	sv2 := rs2v
	if ex.Ctrl.AluSrc2 == AluSrcImm {
		sv2 = uint32(ex.ImmExt)
	}

	aluRes := computeALU(ex.Ctrl.AluOp, sv1, sv2)
	cmpRes := computeCmp(ex.Ctrl.CmpOp, sv1, sv2)
	pcR := ex.Ctrl.IsJump || (ex.Ctrl.IsBranch && cmpRes)

	c.exRedirect = pcR
	c.exJumpBase = jumpBase

	c.Memory.write.RegWrite = ex.Ctrl.RegWrite
	c.Memory.write.MemWrite = ex.Ctrl.MemWrite
	c.Memory.write.MemOp = ex.Ctrl.MemOp
	c.Memory.write.MemSignExt = ex.Ctrl.MemSignExt
	c.Memory.write.ResSrc = ex.Ctrl.ResSrc
	c.Memory.write.RegAddr = ex.Rda
	c.Memory.write.PC = ex.PC
	c.Memory.write.PCNext = ex.PCNext
	c.Memory.write.AluRes = aluRes

	if ex.Ctrl.Interrupt {
		c.hz.raise(StageExecute, ExcInterrupt, ex.PC)
	}
}

// forwardedValue reads the actual bypassed value for a resolved forward
// source; the zero-value (FwdReg) case is handled by the caller, which
// keeps the already-latched register-file read instead.
func (c *CPU) forwardedValue(src ForwardSrc) uint32 {
	switch src {
	case FwdMem:
		return c.Memory.read.AluRes
	case FwdWb:
		return c.Writeback.read.RegWdata
	default:
		return 0
	}
}
