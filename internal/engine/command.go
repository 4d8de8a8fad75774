package engine

import (
	"fmt"
	"strings"
)

// Command is a discrete key action.
type Command int

const (
	SpeedUp Command = iota
	SpeedDown
	RotateLeft
	RotateRight
	Reset
	TogglePointerLock
	Recenter
	ToggleMode
)

var commandNames = map[Command]string{
	SpeedUp:           "speed-up",
	SpeedDown:         "speed-down",
	RotateLeft:        "rotate-left",
	RotateRight:       "rotate-right",
	Reset:             "reset",
	TogglePointerLock: "toggle-pointer-lock",
	Recenter:          "recenter",
	ToggleMode:        "toggle-mode",
}

func (c Command) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// ParseCommand resolves a command by its name.
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, n := range commandNames {
		if n == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("engine: unknown command %q", s)
}

// CommandNames lists every command name.
func CommandNames() []string {
	out := make([]string, 0, len(commandNames))
	for c := SpeedUp; c <= ToggleMode; c++ {
		out = append(out, commandNames[c])
	}
	return out
}
