package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// ABI register aliases in numeric order. Index in this table is the
// register number.
var abiNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var abiNumbers = func() map[string]int {
	m := make(map[string]int, len(abiNames))
	for i, name := range abiNames {
		m[name] = i
	}
	return m
}()

// RegisterNumber resolves a register name to its number. Accepted forms
// are $0-$31 and the ABI aliases ($zero, $t0, $sp, ...), case-insensitive.
func RegisterNumber(name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	if !strings.HasPrefix(trimmed, "$") {
		return 0, fmt.Errorf("invalid register: %q", name)
	}

	body := strings.ToLower(trimmed[1:])
	if body == "" {
		return 0, fmt.Errorf("invalid register: %q", name)
	}

	if num, err := strconv.Atoi(body); err == nil {
		if num < 0 || num > 31 {
			return 0, fmt.Errorf("invalid register: %q", name)
		}
		return num, nil
	}

	if num, ok := abiNumbers[body]; ok {
		return num, nil
	}

	return 0, fmt.Errorf("invalid register: %q", name)
}

// RegisterName returns the canonical ABI name for a register number,
// e.g. 8 -> "$t0".
func RegisterName(num int) string {
	if num < 0 || num > 31 {
		return fmt.Sprintf("$?%d", num)
	}
	return "$" + abiNames[num]
}

// IsRegister reports whether a token names a valid register.
func IsRegister(token string) bool {
	_, err := RegisterNumber(token)
	return err == nil
}
