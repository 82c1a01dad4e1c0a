package rv32pipe_test

import (
	"testing"

	"github.com/zotley/rv32pipe"
	"github.com/zotley/rv32pipe/debugdump"
	"github.com/zotley/rv32pipe/scripttest"
)

const base = 1024

func newCPU(t *testing.T) *rv32pipe.CPU {
	t.Helper()
	cpu, err := rv32pipe.NewCPU(rv32pipe.DefaultConfig())
	if err != nil {
		t.Fatalf("NewCPU: %v", err)
	}
	return cpu
}

// dumpOnFailure prints a debugdump snapshot if the test has already
// failed by the time it runs, giving a register/PC/exception dump
// alongside the failing assertion.
func dumpOnFailure(t *testing.T, cpu *rv32pipe.CPU) {
	t.Helper()
	if !t.Failed() {
		return
	}
	exc := cpu.LastException()
	snap := debugdump.Snapshot{
		Registers:    cpu.Registers(),
		PC:           cpu.PC(),
		Cycles:       cpu.Cycles(),
		Shutdown:     cpu.Shutdown(),
		ExitReason:   cpu.LastExitReason(),
		ExceptionPC:  exc.PC,
		ExceptionFor: exc.Stage.String(),
	}
	t.Log(debugdump.Render(snap))
}

func loadWords(t *testing.T, cpu *rv32pipe.CPU, addr uint32, words []uint32) {
	t.Helper()
	for i, w := range words {
		if err := cpu.Mem.Store(addr+uint32(i*4), w); err != nil {
			t.Fatalf("loading word %d at 0x%x: %v", i, addr+uint32(i*4), err)
		}
	}
}

func assemble(t *testing.T, src string) []uint32 {
	t.Helper()
	words, err := scripttest.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return words
}

func TestEndToEndTrapOnEbreakOnly(t *testing.T) {
	cpu := newCPU(t)
	loadWords(t, cpu, base, []uint32{0x00100073})

	cpu.Execute(base)
	defer dumpOnFailure(t, cpu)

	if !cpu.Shutdown() {
		t.Fatal("expected the CPU to have shut down")
	}
	if got := cpu.LastException().PC; got != base {
		t.Fatalf("exception PC = %d, want %d", got, base)
	}
}

func TestEndToEndMemoryResidentSubtract(t *testing.T) {
	cpu := newCPU(t)
	if err := cpu.Mem.Store(32, 0x21323424); err != nil {
		t.Fatalf("preloading word 8: %v", err)
	}
	if err := cpu.Mem.Store(36, 0xDEADBABE); err != nil {
		t.Fatalf("preloading word 9: %v", err)
	}
	words := assemble(t, `
		emit("LW", 10, 0, 32)
		emit("LW", 11, 0, 36)
		emit("SUB", 12, 11, 10)
		emit("SW", 12, 0, 40)
		emit("EBREAK")
	`)
	loadWords(t, cpu, base, words)

	cpu.Execute(base)
	defer dumpOnFailure(t, cpu)

	want := uint32(0xDEADBABE) - uint32(0x21323424)
	regs := cpu.Registers()
	if regs[12] != want {
		t.Fatalf("x12 = 0x%x, want 0x%x", regs[12], want)
	}
	memWord, err := cpu.Mem.Load(40)
	if err != nil || memWord != want {
		t.Fatalf("mem[40] = 0x%x (err=%v), want 0x%x", memWord, err, want)
	}
	if got := cpu.LastException().PC; got != base+16 {
		t.Fatalf("exception PC = %d, want %d", got, base+16)
	}
}

func TestEndToEndLinkingJump(t *testing.T) {
	cpu := newCPU(t)
	words := assemble(t, `
		emit("JAL", 10, 8)
		emit("ADDI", 11, 0, 123)
		emit("ADDI", 12, 0, 321)
		emit("EBREAK")
	`)
	loadWords(t, cpu, base, words)

	cpu.Execute(base)
	defer dumpOnFailure(t, cpu)

	regs := cpu.Registers()
	if regs[10] != base+4 {
		t.Fatalf("x10 (link) = %d, want %d", regs[10], base+4)
	}
	if regs[11] != 0 {
		t.Fatalf("x11 = %d, want 0 (instruction skipped by the jump)", regs[11])
	}
	if regs[12] != 321 {
		t.Fatalf("x12 = %d, want 321", regs[12])
	}
	if got := cpu.LastException().PC; got != base+12 {
		t.Fatalf("exception PC = %d, want %d", got, base+12)
	}
}

func TestEndToEndFunctionCallAndReturn(t *testing.T) {
	cpu := newCPU(t)
	words := assemble(t, `
		emit("ADDI", 2, 0, 1024)
		emit("JAL", 1, 8)
		emit("EBREAK")
		emit("ADDI", 10, 0, 0)
		emit("JALR", 0, 1, 0)
	`)
	loadWords(t, cpu, base, words)

	cpu.Execute(base)
	defer dumpOnFailure(t, cpu)

	regs := cpu.Registers()
	if regs[1] != base+8 {
		t.Fatalf("x1 (ra) = %d, want %d", regs[1], base+8)
	}
	if regs[2] != 1024 {
		t.Fatalf("x2 (sp) = %d, want 1024", regs[2])
	}
	if regs[10] != 0 {
		t.Fatalf("x10 = %d, want 0", regs[10])
	}
	if got := cpu.LastException().PC; got != base+8 {
		t.Fatalf("exception PC = %d, want %d", got, base+8)
	}
}

func TestEndToEndLoopAccumulator(t *testing.T) {
	cpu := newCPU(t)
	words := assemble(t, `
		emit("ADDI", 10, 0, 0)
		emit("ADDI", 11, 0, 0)
		emit("ADDI", 12, 0, 0)
		emit("ADDI", 13, 0, 3)
		emit("BGE", 12, 13, 20)
		emit("ADDI", 10, 10, 2)
		emit("ADDI", 11, 11, 1)
		emit("ADDI", 12, 12, 1)
		emit("JAL", 0, -16)
		emit("EBREAK")
	`)
	loadWords(t, cpu, base, words)

	cpu.Execute(base)
	defer dumpOnFailure(t, cpu)

	regs := cpu.Registers()
	if regs[10] != 6 {
		t.Fatalf("x10 = %d, want 6", regs[10])
	}
}

func TestEndToEndRecursiveFactorial(t *testing.T) {
	cpu := newCPU(t)
	// ra=x1 sp=x2 a0=x10; t0=x5 (compare const), t1=x6 (saved n), t2=x7
	// (product accumulator), t3=x28 (multiply-loop counter). Stack
	// frames live at byte offsets 512+depth*8 so a first push never
	// touches address 0 (the shutdown sentinel).
	words := assemble(t, `
		emit("ADDI", 10, 0, 5)      -- 1024: a0 = 5
		emit("JAL", 1, 8)           -- 1028: call fact
		emit("EBREAK")              -- 1032

		-- fact: (1036)
		emit("ADDI", 5, 0, 2)       -- 1036: t0 = 2
		emit("BGE", 10, 5, 12)      -- 1040: if a0 >= 2 goto recurse
		emit("ADDI", 10, 0, 1)      -- 1044: a0 = 1 (base case)
		emit("JALR", 0, 1, 0)       -- 1048: return

		-- recurse: (1052)
		emit("ADDI", 2, 2, 8)       -- 1052: sp += 8
		emit("SW", 1, 2, 504)       -- 1056: save ra
		emit("SW", 10, 2, 508)      -- 1060: save n
		emit("ADDI", 10, 10, -1)    -- 1064: a0 = n - 1
		emit("JAL", 1, -32)         -- 1068: call fact(n-1)
		emit("LW", 6, 2, 508)       -- 1072: t1 = saved n
		emit("LW", 1, 2, 504)       -- 1076: restore ra
		emit("ADDI", 2, 2, -8)      -- 1080: sp -= 8
		emit("ADD", 7, 0, 0)        -- 1084: t2 = 0
		emit("ADD", 28, 0, 0)       -- 1088: t3 = 0

		-- mulloop: (1092)
		emit("BGE", 28, 6, 16)      -- 1092: if t3 >= t1 goto muldone
		emit("ADD", 7, 7, 10)       -- 1096: t2 += a0
		emit("ADDI", 28, 28, 1)     -- 1100: t3 += 1
		emit("JAL", 0, -12)         -- 1104: goto mulloop

		-- muldone: (1108)
		emit("ADD", 10, 7, 0)       -- 1108: a0 = t2
		emit("JALR", 0, 1, 0)       -- 1112: return
	`)
	loadWords(t, cpu, base, words)

	cpu.Execute(base)
	defer dumpOnFailure(t, cpu)

	regs := cpu.Registers()
	if regs[10] != 120 {
		t.Fatalf("x10 = %d, want 120 (5!)", regs[10])
	}
	if got := cpu.LastException().PC; got != base+8 {
		t.Fatalf("exception PC = %d, want %d", got, base+8)
	}
}
