package main

import "testing"

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		cmd  string
		arg  string
	}{
		{name: "bare command", line: "clear", cmd: "clear", arg: ""},
		{name: "command with arg", line: "sport nba", cmd: "sport", arg: "nba"},
		{name: "arg keeps interior spaces", line: "search new york jets", cmd: "search", arg: "new york jets"},
		{name: "case-insensitive command", line: "RETRY", cmd: "retry", arg: ""},
		{name: "blank line", line: "   ", cmd: "", arg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, arg := splitCommand(tt.line)
			if cmd != tt.cmd || arg != tt.arg {
				t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)", tt.line, cmd, arg, tt.cmd, tt.arg)
			}
		})
	}
}
