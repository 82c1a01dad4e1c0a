// stage_decode.go - Decode stage logic (§4.4).
package rv32pipe

// DecodeState is Decode's own latched state.
type DecodeState struct {
	Inst   Word
	PC     uint32
	PCNext uint32
	V      bool // true = bubble (no real instruction)
}

// tickDecode performs the register-file commit-before-read required by
// §4.4 step 4, classifies the current instruction, applies the bubble
// contract, and deposits the decoded operands into Execute's write latch.
func (c *CPU) tickDecode() {
	if c.Writeback.read.RegWrite {
		c.Regs.Write(c.Writeback.read.RegAddr, c.Writeback.read.RegWdata)
	}

	de := c.Decode.read
	ctrl := DecodeControl(de.Inst)
	immExt := DecodeImmediate(de.Inst, ctrl.IType)

	switch {
	case de.V:
		// Bubble contract: a bubble never writes registers or memory,
		// never redirects PC, and never raises.
		ctrl.RegWrite = false
		ctrl.MemWrite = false
		ctrl.IsJump = false
		ctrl.IsBranch = false
		ctrl.Interrupt = false
		ctrl.ResSrc = ResALU
	case !ctrl.IsOpcodeOk:
		c.hz.raise(StageDecode, ExcBadOpcode, de.PC)
	}

	rs1a, rs2a, rda := Rs1(de.Inst), Rs2(de.Inst), Rd(de.Inst)

	c.Execute.write.Ctrl = ctrl
	c.Execute.write.PC = de.PC
	c.Execute.write.PCNext = de.PCNext
	c.Execute.write.Rs1a = rs1a
	c.Execute.write.Rs2a = rs2a
	c.Execute.write.Rda = rda
	c.Execute.write.ImmExt = immExt
	c.Execute.write.Rs1v = c.Regs.Read(rs1a)
	c.Execute.write.Rs2v = c.Regs.Read(rs2a)
}
