package vm

import (
	"fmt"
	"io"
	"sort"
)

// Statistics accumulates execution counters for the statistics views.
// Purely observational; nothing here feeds back into execution.
type Statistics struct {
	InstructionMix  map[Mnemonic]uint64 // executions per mnemonic
	ExecutionCounts map[uint32]uint64   // executions per instruction address
	LoadCount       uint64
	StoreCount      uint64
	BranchCount     uint64 // branch instructions executed
	TakenCount      uint64 // branches and jumps that redirected the PC
}

// NewStatistics creates zeroed statistics
func NewStatistics() *Statistics {
	return &Statistics{
		InstructionMix:  make(map[Mnemonic]uint64),
		ExecutionCounts: make(map[uint32]uint64),
	}
}

// RecordStep accounts for one committed instruction. redirected is
// true when the instruction changed the PC away from the sequential
// successor.
func (s *Statistics) RecordStep(in *Instruction, redirected bool) {
	s.InstructionMix[in.Mnemonic]++
	s.ExecutionCounts[in.Address]++

	switch in.Mnemonic {
	case LB, LH, LW, LBU, LHU:
		s.LoadCount++
	case SB, SH, SW:
		s.StoreCount++
	case BEQ, BNE, BLEZ, BGTZ:
		s.BranchCount++
	}
	if redirected {
		s.TakenCount++
	}
}

// HotSpot is one entry of the hot-path report
type HotSpot struct {
	Address uint32
	Count   uint64
}

// HotSpots returns the most frequently executed instruction addresses,
// highest count first, at most n entries.
func (s *Statistics) HotSpots(n int) []HotSpot {
	out := make([]HotSpot, 0, len(s.ExecutionCounts))
	for addr, count := range s.ExecutionCounts {
		out = append(out, HotSpot{Address: addr, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Address < out[j].Address
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Reset zeroes all counters
func (s *Statistics) Reset() {
	s.InstructionMix = make(map[Mnemonic]uint64)
	s.ExecutionCounts = make(map[uint32]uint64)
	s.LoadCount = 0
	s.StoreCount = 0
	s.BranchCount = 0
	s.TakenCount = 0
}

// WriteReport writes a textual statistics report to the writer
func (s *Statistics) WriteReport(w io.Writer) error {
	mix := make([]Mnemonic, 0, len(s.InstructionMix))
	for m := range s.InstructionMix {
		mix = append(mix, m)
	}
	sort.Slice(mix, func(i, j int) bool {
		return s.InstructionMix[mix[i]] > s.InstructionMix[mix[j]]
	})

	if _, err := fmt.Fprintf(w, "Instruction mix:\n"); err != nil {
		return err
	}
	for _, m := range mix {
		if _, err := fmt.Fprintf(w, "  %-8s %d\n", m, s.InstructionMix[m]); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Loads: %d  Stores: %d  Branches: %d  Taken: %d\n",
		s.LoadCount, s.StoreCount, s.BranchCount, s.TakenCount)
	return err
}
