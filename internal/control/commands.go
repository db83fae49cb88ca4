package control

import (
	"github.com/memlab/wilt/internal/state"
	"github.com/pkg/errors"
)

type Command int

const (
	CommandReset Command = iota
	CommandCollapseAll
	CommandExpandAll
	CommandQuit
)

var commandNames = map[Command]string{
	CommandReset:       "reset",
	CommandCollapseAll: "collapse-all",
	CommandExpandAll:   "expand-all",
	CommandQuit:        "quit",
}

func (c Command) String() string {
	name, found := commandNames[c]
	if !found {
		return "unknown"
	}
	return name
}

var keyCommands = map[string]Command{
	"r":      CommandReset,
	"C":      CommandCollapseAll,
	"E":      CommandExpandAll,
	"q":      CommandQuit,
	"ctrl+c": CommandQuit,
}

// CommandForKey maps a key, as bubbletea names it, to its command.
func CommandForKey(key string) (Command, bool) {
	command, found := keyCommands[key]
	return command, found
}

// applyCommand runs a registry command. It reports whether the loop should stop.
func applyCommand(registry *state.Registry, command Command) (bool, error) {
	switch command {
	case CommandReset:
		registry.Reset()
	case CommandCollapseAll:
		registry.CollapseAll()
	case CommandExpandAll:
		registry.ExpandAll()
	case CommandQuit:
		return true, nil
	default:
		return false, errors.Errorf("invalid command '%d'", command)
	}
	return false, nil
}
