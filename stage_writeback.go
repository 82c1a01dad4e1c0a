// stage_writeback.go - Writeback stage (§4.7).
package rv32pipe

// WritebackState is Writeback's own latched state: the value and
// destination of the pending register write, committed by the next
// cycle's Decode tick rather than by Writeback itself.
type WritebackState struct {
	RegWrite bool
	RegAddr  uint32
	RegWdata uint32
}

// tickWriteback performs no combinational work of its own. The actual
// register-file commit happens at the start of the following cycle's
// tickDecode, which reads Writeback.read before this tick's Tick() call
// makes Writeback.write visible.
func (c *CPU) tickWriteback() {}
