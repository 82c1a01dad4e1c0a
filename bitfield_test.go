package rv32pipe

import "testing"

func TestFieldAccessors(t *testing.T) {
	// ADD x5, x6, x7: opcode=0x33 funct3=0 funct7=0 rd=5 rs1=6 rs2=7.
	raw := Word(0x33) | 5<<7 | 0<<12 | 6<<15 | 7<<20 | 0<<25
	if got := Opcode(raw); got != 0x33 {
		t.Fatalf("Opcode = 0x%x, want 0x33", got)
	}
	if got := Rd(raw); got != 5 {
		t.Fatalf("Rd = %d, want 5", got)
	}
	if got := Rs1(raw); got != 6 {
		t.Fatalf("Rs1 = %d, want 6", got)
	}
	if got := Rs2(raw); got != 7 {
		t.Fatalf("Rs2 = %d, want 7", got)
	}
}

func TestDecodeImmediateI(t *testing.T) {
	// ADDI x1, x0, -1: imm = 0xFFF at bits [31:20].
	raw := Word(0x13) | 1<<7 | 0xFFF<<20
	got := DecodeImmediate(raw, ImmI)
	if got != -1 {
		t.Fatalf("ImmI = %d, want -1", got)
	}
}

func TestDecodeImmediateIPositive(t *testing.T) {
	raw := Word(0x13) | 1<<7 | 42<<20
	if got := DecodeImmediate(raw, ImmI); got != 42 {
		t.Fatalf("ImmI = %d, want 42", got)
	}
}

func TestDecodeImmediateS(t *testing.T) {
	// SW x2, -4(x1): imm = -4 -> low5=0x1C (28), high7=0x7F (sign-extended).
	imm := int32(-4)
	lo := uint32(imm) & 0x1F
	hi := (uint32(imm) >> 5) & 0x7F
	raw := Word(0x23) | lo<<7 | hi<<25
	got := DecodeImmediate(raw, ImmS)
	if got != -4 {
		t.Fatalf("ImmS = %d, want -4", got)
	}
}

func TestDecodeImmediateB(t *testing.T) {
	// Encode a branch offset of +8 and check round-trip.
	imm := int32(8)
	b11 := (uint32(imm) >> 11) & 1
	b4_1 := (uint32(imm) >> 1) & 0xF
	b10_5 := (uint32(imm) >> 5) & 0x3F
	b12 := (uint32(imm) >> 12) & 1
	raw := Word(0x63) | b11<<7 | b4_1<<8 | b10_5<<25 | b12<<31
	got := DecodeImmediate(raw, ImmB)
	if got != 8 {
		t.Fatalf("ImmB = %d, want 8", got)
	}
}

func TestDecodeImmediateU(t *testing.T) {
	raw := Word(0x37) | 0x12345<<12
	got := DecodeImmediate(raw, ImmU)
	if got != int32(0x12345000) {
		t.Fatalf("ImmU = 0x%x, want 0x12345000", uint32(got))
	}
}

func TestDecodeImmediateJ(t *testing.T) {
	// JAL with offset +8.
	imm := int32(8)
	b20 := (uint32(imm) >> 20) & 1
	b10_1 := (uint32(imm) >> 1) & 0x3FF
	b11 := (uint32(imm) >> 11) & 1
	b19_12 := (uint32(imm) >> 12) & 0xFF
	raw := Word(0x6F) | b19_12<<12 | b11<<20 | b10_1<<21 | b20<<31
	got := DecodeImmediate(raw, ImmJ)
	if got != 8 {
		t.Fatalf("ImmJ = %d, want 8", got)
	}
}

func TestDecodeImmediateNone(t *testing.T) {
	if got := DecodeImmediate(0xFFFFFFFF, ImmNone); got != 0 {
		t.Fatalf("ImmNone = %d, want 0", got)
	}
}

func TestSignExtendHighBitSet(t *testing.T) {
	// All 12 low bits set (0xFFF) sign-extends to -1.
	got := signExtend(0xFFF, 12)
	if got != -1 {
		t.Fatalf("signExtend(0xFFF, 12) = %d, want -1", got)
	}
}

func TestSignExtendHighBitClear(t *testing.T) {
	got := signExtend(0x7FF, 12)
	if got != 0x7FF {
		t.Fatalf("signExtend(0x7FF, 12) = %d, want %d", got, 0x7FF)
	}
}
