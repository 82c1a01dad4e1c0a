// loader.go - assembles RV32I test programs from short Lua snippets.
//
// A script calls emit(mnemonic, operands...) any number of times; each
// call appends one encoded instruction word. This exists purely to let
// table-driven tests describe a program's shape without hand-computing
// hex encodings, the same way the teacher's assembler/ front end lowers
// text to machine words ahead of execution.
package scripttest

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Assemble runs src in a fresh Lua state and returns the instruction
// words emitted via emit(mnemonic, ops...).
func Assemble(src string) ([]uint32, error) {
	var words []uint32
	var emitErr error

	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("emit", L.NewFunction(func(L *lua.LState) int {
		if emitErr != nil {
			return 0
		}
		n := L.GetTop()
		if n < 1 {
			emitErr = fmt.Errorf("scripttest: emit requires a mnemonic argument")
			return 0
		}
		name := L.CheckString(1)
		ops := make([]int32, 0, n-1)
		for i := 2; i <= n; i++ {
			ops = append(ops, int32(L.CheckInt(i)))
		}
		word, err := encodeMnemonic(name, ops)
		if err != nil {
			emitErr = err
			return 0
		}
		words = append(words, word)
		return 0
	}))

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("scripttest: running script: %w", err)
	}
	if emitErr != nil {
		return nil, emitErr
	}
	return words, nil
}

func encodeMnemonic(name string, ops []int32) (uint32, error) {
	m, ok := mnemonics[name]
	if !ok {
		return 0, fmt.Errorf("scripttest: unknown mnemonic %q", name)
	}
	return m.encode(ops)
}

func threeRegs(ops []int32) (rd, rs1, rs2 uint32, err error) {
	if len(ops) != 3 {
		return 0, 0, 0, fmt.Errorf("scripttest: expected 3 operands, got %d", len(ops))
	}
	return uint32(ops[0]) & 0x1F, uint32(ops[1]) & 0x1F, uint32(ops[2]) & 0x1F, nil
}

func twoRegsImm(ops []int32) (a, b uint32, imm uint32, err error) {
	if len(ops) != 3 {
		return 0, 0, 0, fmt.Errorf("scripttest: expected 3 operands, got %d", len(ops))
	}
	return uint32(ops[0]) & 0x1F, uint32(ops[1]) & 0x1F, uint32(ops[2]), nil
}

func oneRegImm(ops []int32) (rd uint32, imm uint32, err error) {
	if len(ops) != 2 {
		return 0, 0, fmt.Errorf("scripttest: expected 2 operands, got %d", len(ops))
	}
	return uint32(ops[0]) & 0x1F, uint32(ops[1]), nil
}
