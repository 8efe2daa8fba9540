package ir

import (
	"context"
	"fmt"
	"sort"
)

// CommandSet is a named collection of commands, typically all the buttons of
// one remote control. The emitter and receiver channels are opaque
// identifiers (a GPIO pin, a serial device path) handed through to the
// capture and playback collaborators; the set never interprets them and
// performs no timing-sensitive I/O itself.
type CommandSet struct {
	Name            string
	Description     string
	EmitterChannel  string
	ReceiverChannel string
	Commands        map[string]*Command
}

// NewCommandSet creates an empty command set.
func NewCommandSet(name, description, emitterChannel, receiverChannel string) *CommandSet {
	return &CommandSet{
		Name:            name,
		Description:     description,
		EmitterChannel:  emitterChannel,
		ReceiverChannel: receiverChannel,
		Commands:        make(map[string]*Command),
	}
}

// Add stores a command under its name, replacing any previous entry.
func (s *CommandSet) Add(cmd *Command) {
	if s.Commands == nil {
		s.Commands = make(map[string]*Command)
	}
	s.Commands[cmd.Name] = cmd
}

// Record captures a new command from the source, normalizes it with the
// given tolerance and stores it under id.
func (s *CommandSet) Record(ctx context.Context, id, description string, src CaptureSource, tolerance float64) (*Command, error) {
	cmd, err := Receive(ctx, id, description, src)
	if err != nil {
		return nil, err
	}
	if err := cmd.Normalize(tolerance); err != nil {
		return nil, err
	}
	s.Add(cmd)
	return cmd, nil
}

// Get looks up a command by id.
func (s *CommandSet) Get(id string) (*Command, bool) {
	cmd, ok := s.Commands[id]
	return cmd, ok
}

// Remove deletes a command by id.
func (s *CommandSet) Remove(id string) error {
	if _, ok := s.Commands[id]; !ok {
		return fmt.Errorf("command set %q has no command %q", s.Name, id)
	}
	delete(s.Commands, id)
	return nil
}

// Names returns the command ids in sorted order.
func (s *CommandSet) Names() []string {
	names := make([]string, 0, len(s.Commands))
	for name := range s.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Emit plays the named command on the set's emitter channel, preferring the
// normalized sequence when the command has one.
func (s *CommandSet) Emit(id string, emitter Emitter, carrierKHz float64) error {
	cmd, ok := s.Commands[id]
	if !ok {
		return fmt.Errorf("command set %q has no command %q", s.Name, id)
	}
	if err := emitter.Emit(s.EmitterChannel, cmd.ReplaySequence(), carrierKHz); err != nil {
		return fmt.Errorf("emit %q: %w", id, err)
	}
	return nil
}
