package main

import (
	"bufio"
	"os"
	"strings"
)

// newStdinScanner returns a line scanner over stdin.
func newStdinScanner() *bufio.Scanner {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 4096), 1<<16)
	return scanner
}

// splitCommand separates a command word from its argument, preserving
// interior spaces in the argument (search terms may contain them).
func splitCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	parts := strings.SplitN(line, " ", 2)
	cmd = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}
