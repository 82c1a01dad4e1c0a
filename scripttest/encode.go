// encode.go - R/I/S/B/U/J word encoders, the inverse of the core
// decoder's bit-field layout (rv32pipe/bitfield.go), re-derived here
// rather than imported so this package stays a standalone test-authoring
// tool with no dependency on the package it helps exercise.
package scripttest

// mnemonic describes how to assemble one instruction name into a word
// given its operands, in the order emit() receives them.
type mnemonic struct {
	encode func(ops []int32) (uint32, error)
}

func rType(opcode, funct3, funct7 uint32) func(ops []int32) (uint32, error) {
	return func(ops []int32) (uint32, error) {
		rd, rs1, rs2, err := threeRegs(ops)
		if err != nil {
			return 0, err
		}
		return opcode | rd<<7 | funct3<<12 | rs1<<15 | rs2<<20 | funct7<<25, nil
	}
}

func iType(opcode, funct3 uint32) func(ops []int32) (uint32, error) {
	return func(ops []int32) (uint32, error) {
		rd, rs1, imm, err := twoRegsImm(ops)
		if err != nil {
			return 0, err
		}
		return opcode | rd<<7 | funct3<<12 | rs1<<15 | (imm&0xFFF)<<20, nil
	}
}

func shiftType(opcode, funct3, funct7 uint32) func(ops []int32) (uint32, error) {
	return func(ops []int32) (uint32, error) {
		rd, rs1, shamt, err := twoRegsImm(ops)
		if err != nil {
			return 0, err
		}
		return opcode | rd<<7 | funct3<<12 | rs1<<15 | (uint32(shamt)&0x1F)<<20 | funct7<<25, nil
	}
}

func loadType(opcode, funct3 uint32) func(ops []int32) (uint32, error) {
	return func(ops []int32) (uint32, error) {
		rd, rs1, imm, err := twoRegsImm(ops)
		if err != nil {
			return 0, err
		}
		return opcode | rd<<7 | funct3<<12 | rs1<<15 | (imm&0xFFF)<<20, nil
	}
}

func storeType(opcode, funct3 uint32) func(ops []int32) (uint32, error) {
	return func(ops []int32) (uint32, error) {
		rs2, rs1, imm, err := twoRegsImm(ops)
		if err != nil {
			return 0, err
		}
		lo := imm & 0x1F
		hi := (imm >> 5) & 0x7F
		return opcode | lo<<7 | funct3<<12 | rs1<<15 | rs2<<20 | hi<<25, nil
	}
}

func branchType(opcode, funct3 uint32) func(ops []int32) (uint32, error) {
	return func(ops []int32) (uint32, error) {
		rs1, rs2, imm, err := twoRegsImm(ops)
		if err != nil {
			return 0, err
		}
		b11 := (imm >> 11) & 1
		b4_1 := (imm >> 1) & 0xF
		b10_5 := (imm >> 5) & 0x3F
		b12 := (imm >> 12) & 1
		return opcode | b11<<7 | b4_1<<8 | funct3<<12 | rs1<<15 | rs2<<20 | b10_5<<25 | b12<<31, nil
	}
}

func uType(opcode uint32) func(ops []int32) (uint32, error) {
	return func(ops []int32) (uint32, error) {
		rd, imm, err := oneRegImm(ops)
		if err != nil {
			return 0, err
		}
		return opcode | rd<<7 | (imm & 0xFFFFF000), nil
	}
}

func jalType(ops []int32) (uint32, error) {
	rd, imm, err := oneRegImm(ops)
	if err != nil {
		return 0, err
	}
	b20 := (imm >> 20) & 1
	b10_1 := (imm >> 1) & 0x3FF
	b11 := (imm >> 11) & 1
	b19_12 := (imm >> 12) & 0xFF
	const opcode = 0x6F
	return opcode | rd<<7 | b19_12<<12 | b11<<20 | b10_1<<21 | b20<<31, nil
}

func systemType(imm11_0 uint32) func(ops []int32) (uint32, error) {
	return func([]int32) (uint32, error) {
		const opcode = 0x73
		return opcode | imm11_0<<20, nil
	}
}

var mnemonics = map[string]mnemonic{
	"ADD":   {rType(0x33, 0b000, 0b0000000)},
	"SUB":   {rType(0x33, 0b000, 0b0100000)},
	"SLL":   {rType(0x33, 0b001, 0)},
	"SLT":   {rType(0x33, 0b010, 0)},
	"SLTU":  {rType(0x33, 0b011, 0)},
	"XOR":   {rType(0x33, 0b100, 0)},
	"SRL":   {rType(0x33, 0b101, 0b0000000)},
	"SRA":   {rType(0x33, 0b101, 0b0100000)},
	"OR":    {rType(0x33, 0b110, 0)},
	"AND":   {rType(0x33, 0b111, 0)},
	"ADDI":  {iType(0x13, 0b000)},
	"SLTI":  {iType(0x13, 0b010)},
	"SLTIU": {iType(0x13, 0b011)},
	"XORI":  {iType(0x13, 0b100)},
	"ORI":   {iType(0x13, 0b110)},
	"ANDI":  {iType(0x13, 0b111)},
	"SLLI":  {shiftType(0x13, 0b001, 0b0000000)},
	"SRLI":  {shiftType(0x13, 0b101, 0b0000000)},
	"SRAI":  {shiftType(0x13, 0b101, 0b0100000)},
	"JALR":  {iType(0x67, 0b000)},
	"LB":    {loadType(0x03, 0b000)},
	"LH":    {loadType(0x03, 0b001)},
	"LW":    {loadType(0x03, 0b010)},
	"LBU":   {loadType(0x03, 0b100)},
	"LHU":   {loadType(0x03, 0b101)},
	"SB":    {storeType(0x23, 0b000)},
	"SH":    {storeType(0x23, 0b001)},
	"SW":    {storeType(0x23, 0b010)},
	"BEQ":   {branchType(0x63, 0b000)},
	"BNE":   {branchType(0x63, 0b001)},
	"BLT":   {branchType(0x63, 0b100)},
	"BGE":   {branchType(0x63, 0b101)},
	"BLTU":  {branchType(0x63, 0b110)},
	"BGEU":  {branchType(0x63, 0b111)},
	"LUI":   {uType(0x37)},
	"AUIPC": {uType(0x17)},
	"JAL":   {jalType},
	"ECALL": {systemType(0)},
	"EBREAK": {systemType(1)},
}
