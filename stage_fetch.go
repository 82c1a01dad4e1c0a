// stage_fetch.go - Fetch stage logic (§4.3).
package rv32pipe

import "errors"

// FetchState is Fetch's own latched state: just the program counter.
type FetchState struct {
	PC uint32
}

// tickFetch issues the instruction-word load for read.PC, computes the
// next PC (sequential unless Execute is redirecting), and deposits the
// fetched word plus pc/pcNext into Decode's write latch.
func (c *CPU) tickFetch() {
	pc := c.Fetch.read.PC

	word, err := c.Mem.Load(pc)
	if err != nil {
		var fault *MemFault
		if errors.As(err, &fault) {
			c.hz.raise(StageFetch, fault.Kind, pc)
		}
	}

	var pcNext uint32
	if !c.exRedirect {
		pcNext = pc + 4
	} else {
		pcNext = c.exJumpBase + uint32(c.Execute.read.ImmExt)
	}

	c.Fetch.write.PC = pcNext
	c.Decode.write.Inst = word
	c.Decode.write.PC = pc
	c.Decode.write.PCNext = pcNext
	c.Decode.write.V = false
}
