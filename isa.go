// isa.go - opcode table and control-parameter decode.
//
// Dispatch is opcode-first, funct3-second. funct7 only disambiguates
// ADD/SUB and SRL/SRA, the two OP/OP-IMM encodings that actually share
// a funct3; every other funct3 value is decisive on its own and the
// remaining funct7 bits go unchecked. SYSTEM dispatches on the raw
// imm11_0 constant (ECALL vs EBREAK) instead of funct3.
package rv32pipe

// ------------------------------------------------------------------------------
// Opcodes
// ------------------------------------------------------------------------------
const (
	OpcodeLOAD    = 0x03
	OpcodeMISCMEM = 0x0F
	OpcodeOPIMM   = 0x13
	OpcodeAUIPC   = 0x17
	OpcodeSTORE   = 0x23
	OpcodeOP      = 0x33
	OpcodeLUI     = 0x37
	OpcodeBRANCH  = 0x63
	OpcodeJALR    = 0x67
	OpcodeJAL     = 0x6F
	OpcodeSYSTEM  = 0x73
)

// AluSrc selects an ALU input's origin.
type AluSrc int

const (
	AluSrcReg AluSrc = iota
	AluSrcImm
	AluSrcPC
)

// AluOp names the ALU operation Execute performs.
type AluOp int

const (
	AluADD AluOp = iota
	AluSUB
	AluSLL
	AluSLT
	AluSLTU
	AluXOR
	AluSRL
	AluSRA
	AluOR
	AluAND
	AluPASS2
)

// CmpOp names the branch-comparison Execute performs.
type CmpOp int

const (
	CmpNone CmpOp = iota
	CmpEQ
	CmpNE
	CmpLT
	CmpGE
	CmpLTU
	CmpGEU
)

// MemOp names the width of a Memory-stage access.
type MemOp int

const (
	MemWORD MemOp = iota
	MemHALF
	MemBYTE
)

// ResSrc selects which computed value Writeback commits.
type ResSrc int

const (
	ResALU ResSrc = iota
	ResMEM
	ResPC
)

// Control is the decoded control-parameter record carried alongside an
// instruction as it moves down the pipeline.
type Control struct {
	IType      ImmType
	RegWrite   bool
	AluSrc1    AluSrc
	AluSrc2    AluSrc
	AluOp      AluOp
	CmpOp      CmpOp
	IsJump     bool
	IsJumpReg  bool
	IsBranch   bool
	MemOp      MemOp
	MemWrite   bool
	MemSignExt bool
	ResSrc     ResSrc
	IsOpcodeOk bool
	Interrupt  bool
}

type decodeFunc func(raw Word) Control

var opcodeTable [opcodeMask + 1]decodeFunc

func init() {
	for i := range opcodeTable {
		opcodeTable[i] = decodeUnknown
	}
	opcodeTable[OpcodeLUI] = decodeLUI
	opcodeTable[OpcodeAUIPC] = decodeAUIPC
	opcodeTable[OpcodeJAL] = decodeJAL
	opcodeTable[OpcodeJALR] = decodeJALR
	opcodeTable[OpcodeBRANCH] = decodeBranch
	opcodeTable[OpcodeLOAD] = decodeLoad
	opcodeTable[OpcodeSTORE] = decodeStore
	opcodeTable[OpcodeOPIMM] = decodeOpImm
	opcodeTable[OpcodeOP] = decodeOp
	opcodeTable[OpcodeMISCMEM] = decodeMiscMem
	opcodeTable[OpcodeSYSTEM] = decodeSystem
}

// DecodeControl maps a raw instruction word to its decoded control
// parameters via opcode dispatch. An unrecognized encoding yields a
// Control with IsOpcodeOk false.
func DecodeControl(raw Word) Control {
	return opcodeTable[Opcode(raw)](raw)
}

func decodeUnknown(Word) Control {
	return Control{}
}

func decodeLUI(Word) Control {
	return Control{
		IType:      ImmU,
		RegWrite:   true,
		AluSrc2:    AluSrcImm,
		AluOp:      AluPASS2,
		ResSrc:     ResALU,
		IsOpcodeOk: true,
	}
}

func decodeAUIPC(Word) Control {
	return Control{
		IType:      ImmU,
		RegWrite:   true,
		AluSrc1:    AluSrcPC,
		AluSrc2:    AluSrcImm,
		AluOp:      AluADD,
		ResSrc:     ResALU,
		IsOpcodeOk: true,
	}
}

func decodeJAL(Word) Control {
	return Control{
		IType:      ImmJ,
		RegWrite:   true,
		IsJump:     true,
		ResSrc:     ResPC,
		IsOpcodeOk: true,
	}
}

func decodeJALR(Word) Control {
	return Control{
		IType:      ImmI,
		RegWrite:   true,
		IsJump:     true,
		IsJumpReg:  true,
		ResSrc:     ResPC,
		IsOpcodeOk: true,
	}
}

func decodeBranch(raw Word) Control {
	var cmp CmpOp
	switch Funct3(raw) {
	case 0b000:
		cmp = CmpEQ
	case 0b001:
		cmp = CmpNE
	case 0b100:
		cmp = CmpLT
	case 0b101:
		cmp = CmpGE
	case 0b110:
		cmp = CmpLTU
	case 0b111:
		cmp = CmpGEU
	default:
		return decodeUnknown(raw)
	}
	return Control{
		IType:      ImmB,
		IsBranch:   true,
		CmpOp:      cmp,
		ResSrc:     ResALU,
		IsOpcodeOk: true,
	}
}

func decodeLoad(raw Word) Control {
	var memOp MemOp
	signExt := true
	switch Funct3(raw) {
	case 0b000:
		memOp, signExt = MemBYTE, true
	case 0b001:
		memOp, signExt = MemHALF, true
	case 0b010:
		memOp, signExt = MemWORD, false
	case 0b100:
		memOp, signExt = MemBYTE, false
	case 0b101:
		memOp, signExt = MemHALF, false
	default:
		return decodeUnknown(raw)
	}
	return Control{
		IType:      ImmI,
		RegWrite:   true,
		AluSrc2:    AluSrcImm,
		AluOp:      AluADD,
		MemOp:      memOp,
		MemSignExt: signExt,
		ResSrc:     ResMEM,
		IsOpcodeOk: true,
	}
}

func decodeStore(raw Word) Control {
	var memOp MemOp
	switch Funct3(raw) {
	case 0b000:
		memOp = MemBYTE
	case 0b001:
		memOp = MemHALF
	case 0b010:
		memOp = MemWORD
	default:
		return decodeUnknown(raw)
	}
	return Control{
		IType:      ImmS,
		AluSrc2:    AluSrcImm,
		AluOp:      AluADD,
		MemOp:      memOp,
		MemWrite:   true,
		ResSrc:     ResALU,
		IsOpcodeOk: true,
	}
}

func decodeOpImm(raw Word) Control {
	base := Control{
		IType:      ImmI,
		RegWrite:   true,
		AluSrc2:    AluSrcImm,
		ResSrc:     ResALU,
		IsOpcodeOk: true,
	}
	switch Funct3(raw) {
	case 0b000:
		base.AluOp = AluADD
	case 0b010:
		base.AluOp = AluSLT
	case 0b011:
		base.AluOp = AluSLTU
	case 0b100:
		base.AluOp = AluXOR
	case 0b110:
		base.AluOp = AluOR
	case 0b111:
		base.AluOp = AluAND
	case 0b001:
		base.AluOp = AluSLL
	case 0b101:
		switch Funct7(raw) {
		case 0b0000000:
			base.AluOp = AluSRL
		case 0b0100000:
			base.AluOp = AluSRA
		default:
			return decodeUnknown(raw)
		}
	default:
		return decodeUnknown(raw)
	}
	return base
}

func decodeOp(raw Word) Control {
	base := Control{
		RegWrite:   true,
		ResSrc:     ResALU,
		IsOpcodeOk: true,
	}
	switch Funct3(raw) {
	case 0b000:
		switch Funct7(raw) {
		case 0b0000000:
			base.AluOp = AluADD
		case 0b0100000:
			base.AluOp = AluSUB
		default:
			return decodeUnknown(raw)
		}
	case 0b001:
		base.AluOp = AluSLL
	case 0b010:
		base.AluOp = AluSLT
	case 0b011:
		base.AluOp = AluSLTU
	case 0b100:
		base.AluOp = AluXOR
	case 0b101:
		switch Funct7(raw) {
		case 0b0000000:
			base.AluOp = AluSRL
		case 0b0100000:
			base.AluOp = AluSRA
		default:
			return decodeUnknown(raw)
		}
	case 0b110:
		base.AluOp = AluOR
	case 0b111:
		base.AluOp = AluAND
	default:
		return decodeUnknown(raw)
	}
	return base
}

// decodeMiscMem handles FENCE: a no-op that never interrupts. The
// opcode alone identifies it; funct3 is not inspected.
func decodeMiscMem(Word) Control {
	return Control{ResSrc: ResALU, IsOpcodeOk: true}
}

// decodeSystem handles ECALL (imm11_0 == 0) and EBREAK (imm11_0 == 1),
// dispatching on imm11_0 alone; funct3 is not inspected.
func decodeSystem(raw Word) Control {
	switch Imm110(raw) {
	case 0, 1:
		return Control{ResSrc: ResALU, IsOpcodeOk: true, Interrupt: true}
	default:
		return decodeUnknown(raw)
	}
}

// computeALU evaluates the ALU for the given operands per §4.5.
func computeALU(op AluOp, a, b uint32) uint32 {
	switch op {
	case AluADD:
		return a + b
	case AluSUB:
		return a - b
	case AluSLL:
		return a << (b & 31)
	case AluSLT:
		if int32(a) < int32(b) {
			return 1
		}
		return 0
	case AluSLTU:
		if a < b {
			return 1
		}
		return 0
	case AluXOR:
		return a ^ b
	case AluSRL:
		return a >> (b & 31)
	case AluSRA:
		return uint32(int32(a) >> (b & 31))
	case AluOR:
		return a | b
	case AluAND:
		return a & b
	case AluPASS2:
		return b
	default:
		return 0
	}
}

// computeCmp evaluates the branch comparison for the given operands.
func computeCmp(op CmpOp, a, b uint32) bool {
	switch op {
	case CmpEQ:
		return a == b
	case CmpNE:
		return a != b
	case CmpLT:
		return int32(a) < int32(b)
	case CmpGE:
		return int32(a) >= int32(b)
	case CmpLTU:
		return a < b
	case CmpGEU:
		return a >= b
	default:
		return false
	}
}
