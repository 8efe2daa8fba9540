package ir

import (
	"fmt"
	"sort"
)

// ClassRecord is the persisted shape of a signal class: enough descriptive
// state to rebuild a class usable for containment tests and representative
// lookups without the original raw capture.
type ClassRecord struct {
	Kind  Kind    `json:"kind" yaml:"kind"`
	ID    int     `json:"id" yaml:"id"`
	Min   int64   `json:"min" yaml:"min"`
	Max   int64   `json:"max" yaml:"max"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Mode  int64   `json:"mode" yaml:"mode"`
	Count int     `json:"count" yaml:"count"`
}

// CommandRecord is the persisted shape of a command. SignalClassList is the
// per-position class assignment (parallel to SignalList) and is null for a
// command that was never normalized.
type CommandRecord struct {
	Name            string        `json:"name" yaml:"name"`
	Description     string        `json:"description" yaml:"description"`
	SignalList      []Signal      `json:"signal_list" yaml:"signal_list"`
	NormalizedList  []Signal      `json:"normalized_list,omitempty" yaml:"normalized_list,omitempty"`
	SignalClassList []ClassRecord `json:"signal_class_list" yaml:"signal_class_list"`
}

// CommandSetRecord is the persisted shape of a whole command set.
type CommandSetRecord struct {
	Name            string                   `json:"name" yaml:"name"`
	Description     string                   `json:"description" yaml:"description"`
	EmitterChannel  string                   `json:"emitter_channel" yaml:"emitter_channel"`
	ReceiverChannel string                   `json:"receiver_channel" yaml:"receiver_channel"`
	Commands        map[string]CommandRecord `json:"commands" yaml:"commands"`
}

// classRecord flattens a class into its persisted descriptor.
func classRecord(c *SignalClass) ClassRecord {
	return ClassRecord{
		Kind:  c.Kind,
		ID:    c.ID,
		Min:   c.Min,
		Max:   c.Max,
		Mean:  c.Mean,
		Mode:  c.Mode,
		Count: c.Count,
	}
}

// classFromRecord rebuilds a class from its descriptor. Lengths stays nil;
// the summary statistics carry everything containment and representative
// policies need.
func classFromRecord(rec ClassRecord) *SignalClass {
	return &SignalClass{
		Kind:  rec.Kind,
		ID:    rec.ID,
		Count: rec.Count,
		Mean:  rec.Mean,
		Mode:  rec.Mode,
		Min:   rec.Min,
		Max:   rec.Max,
	}
}

// Record flattens the command into its persisted shape.
func (c *Command) Record() CommandRecord {
	rec := CommandRecord{
		Name:        c.Name,
		Description: c.Description,
		SignalList:  append([]Signal(nil), c.Raw...),
	}
	if c.IsNormalized() {
		rec.NormalizedList = append([]Signal(nil), c.Normalized...)
		rec.SignalClassList = make([]ClassRecord, len(c.Classes))
		for i, cls := range c.Classes {
			rec.SignalClassList[i] = classRecord(cls)
		}
	}
	return rec
}

// CommandFromRecord rebuilds a command from its persisted shape. Class
// descriptors repeated across positions collapse back to one shared class
// per (kind, id), and the per-kind class lists are reconstructed in id
// order so a later NormalizeWith sees the same scan order as the session
// that produced the record.
func CommandFromRecord(rec CommandRecord) (*Command, error) {
	if err := ValidateSequence(rec.SignalList); err != nil {
		return nil, fmt.Errorf("command record %q: %w", rec.Name, err)
	}

	cmd := &Command{
		Name:        rec.Name,
		Description: rec.Description,
		Raw:         append([]Signal(nil), rec.SignalList...),
	}

	if len(rec.SignalClassList) == 0 {
		return cmd, nil
	}
	if len(rec.SignalClassList) != len(rec.SignalList) {
		return nil, fmt.Errorf("command record %q: class list length %d does not match signal list length %d",
			rec.Name, len(rec.SignalClassList), len(rec.SignalList))
	}
	if err := ValidateSequence(rec.NormalizedList); err != nil {
		return nil, fmt.Errorf("command record %q normalized list: %w", rec.Name, err)
	}

	type classKey struct {
		kind Kind
		id   int
	}
	unique := make(map[classKey]*SignalClass)

	cmd.Normalized = append([]Signal(nil), rec.NormalizedList...)
	cmd.Classes = make([]*SignalClass, len(rec.SignalClassList))
	for i, cr := range rec.SignalClassList {
		if cr.Kind != KindAt(i) {
			return nil, fmt.Errorf("command record %q: %s class assigned at %s position %d",
				rec.Name, cr.Kind, KindAt(i), i)
		}
		key := classKey{kind: cr.Kind, id: cr.ID}
		cls, ok := unique[key]
		if !ok {
			cls = classFromRecord(cr)
			unique[key] = cls
		}
		cmd.Classes[i] = cls
	}

	for _, cls := range unique {
		if cls.Kind == Pulse {
			cmd.PulseClasses = append(cmd.PulseClasses, cls)
		} else {
			cmd.GapClasses = append(cmd.GapClasses, cls)
		}
	}
	sort.Slice(cmd.PulseClasses, func(i, j int) bool { return cmd.PulseClasses[i].ID < cmd.PulseClasses[j].ID })
	sort.Slice(cmd.GapClasses, func(i, j int) bool { return cmd.GapClasses[i].ID < cmd.GapClasses[j].ID })

	return cmd, nil
}

// ToRecord flattens the set into its persisted shape.
func (s *CommandSet) ToRecord() CommandSetRecord {
	rec := CommandSetRecord{
		Name:            s.Name,
		Description:     s.Description,
		EmitterChannel:  s.EmitterChannel,
		ReceiverChannel: s.ReceiverChannel,
		Commands:        make(map[string]CommandRecord, len(s.Commands)),
	}
	for id, cmd := range s.Commands {
		rec.Commands[id] = cmd.Record()
	}
	return rec
}

// CommandSetFromRecord rebuilds a command set from its persisted shape.
func CommandSetFromRecord(rec CommandSetRecord) (*CommandSet, error) {
	set := NewCommandSet(rec.Name, rec.Description, rec.EmitterChannel, rec.ReceiverChannel)
	for id, cmdRec := range rec.Commands {
		cmd, err := CommandFromRecord(cmdRec)
		if err != nil {
			return nil, fmt.Errorf("command set record %q: %w", rec.Name, err)
		}
		set.Commands[id] = cmd
	}
	return set, nil
}
