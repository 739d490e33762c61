package pipeline

import (
	"bytes"
	"encoding/json"

	"github.com/vango-dev/livecoll/internal/errors"
	"github.com/vango-dev/livecoll/pkg/observable"
)

// Operation names.
const (
	// List operations.
	OpAppend  = "append"
	OpInsert  = "insert"
	OpRemove  = "remove" // Also a map operation
	OpSet     = "set"    // Also a map operation
	OpUpdate  = "update" // Also a map operation
	OpMove    = "move"
	OpReplace = "replace"

	// Map operations.
	OpAdd   = "add"
	OpClear = "clear"

	// Operator settings.
	OpSetFilter = "setFilter"
	OpSetApply  = "setApply"
)

// Op is one mutation of a collection.
//
// List operations address elements by Index (and To for moves); map
// operations by Key. Params travels with set and update events. Values is
// the new content of a replace. Name is the predicate of a setFilter or the
// applier of a setApply.
type Op struct {
	Target string `json:"target"`
	Op     string `json:"op"`
	Index  int    `json:"index,omitempty"`
	To     int    `json:"to,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  any    `json:"value,omitempty"`
	Values []any  `json:"values,omitempty"`
	Params any    `json:"params,omitempty"`
	Name   string `json:"name,omitempty"`
}

// ParseOps decodes one JSON operation or a JSON array of them.
func ParseOps(data []byte) ([]Op, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var ops []Op
		if err := json.Unmarshal(data, &ops); err != nil {
			return nil, errors.New("E121").WithDetail(err.Error()).Wrap(ErrInvalidOp)
		}
		return ops, nil
	}
	var op Op
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, errors.New("E121").WithDetail(err.Error()).Wrap(ErrInvalidOp)
	}
	return []Op{op}, nil
}

// ApplyAll applies ops in order and stops at the first failure. It returns
// the number of operations applied.
func (p *Pipeline) ApplyAll(ops []Op) (int, error) {
	for i, op := range ops {
		if err := p.Apply(op); err != nil {
			return i, err
		}
	}
	return len(ops), nil
}

// Apply performs op. Every event it causes has been delivered when Apply
// returns.
func (p *Pipeline) Apply(op Op) error {
	n, err := p.node(op.Target)
	if err != nil {
		return err
	}
	p.logger.Debug("apply op", "target", op.Target, "op", op.Op)

	switch {
	case n.array != nil:
		return p.applyList(n, op)
	case n.dict != nil:
		return p.applyMap(n, op)
	case n.filter != nil && op.Op == OpSetFilter:
		pred, err := LookupPredicate(op.Name)
		if err != nil {
			return err
		}
		n.filter.SetFilter(observable.ByValue[any](pred))
		return nil
	case n.apply != nil && op.Op == OpSetApply:
		fn, err := p.lookupApplier(op.Name, n.name)
		if err != nil {
			return err
		}
		n.apply.SetApply(fn)
		return nil
	}
	return unsupported(n, op)
}

func (p *Pipeline) applyList(n *node, op Op) error {
	a := n.array
	switch op.Op {
	case OpAppend:
		a.Append(op.Value)
	case OpInsert:
		if err := checkIndex(n, op.Index, a.Len()+1); err != nil {
			return err
		}
		a.Insert(op.Index, op.Value)
	case OpRemove:
		if err := checkIndex(n, op.Index, a.Len()); err != nil {
			return err
		}
		a.RemoveAt(op.Index)
	case OpSet:
		if err := checkIndex(n, op.Index, a.Len()); err != nil {
			return err
		}
		a.SetAt(op.Index, op.Value, op.Params)
	case OpUpdate:
		if err := checkIndex(n, op.Index, a.Len()); err != nil {
			return err
		}
		a.UpdateAt(op.Index, op.Params)
	case OpMove:
		if err := checkIndex(n, op.Index, a.Len()); err != nil {
			return err
		}
		if err := checkIndex(n, op.To, a.Len()); err != nil {
			return err
		}
		a.Move(op.Index, op.To)
	case OpReplace:
		a.Replace(op.Values)
	default:
		return unsupported(n, op)
	}
	return nil
}

func (p *Pipeline) applyMap(n *node, op Op) error {
	d := n.dict
	switch op.Op {
	case OpAdd:
		if !d.Add(op.Key, op.Value) {
			return errors.New("E125").WithDetailf("Key %q is already present in %q", op.Key, n.name).Wrap(ErrInvalidOp)
		}
	case OpSet:
		d.Set(op.Key, op.Value, op.Params)
	case OpUpdate:
		if !d.Update(op.Key, op.Params) {
			return missingKey(n, op.Key)
		}
	case OpRemove:
		if _, ok := d.Remove(op.Key); !ok {
			return missingKey(n, op.Key)
		}
	case OpClear:
		d.Clear()
	default:
		return unsupported(n, op)
	}
	return nil
}

func checkIndex(n *node, index, limit int) error {
	if index < 0 || index >= limit {
		return errors.New("E123").
			WithDetailf("Index %d is out of range for %q (length %d)", index, n.name, n.array.Len()).
			Wrap(ErrInvalidOp)
	}
	return nil
}

func missingKey(n *node, key string) error {
	return errors.New("E124").WithDetailf("Key %q is not present in %q", key, n.name).Wrap(ErrInvalidOp)
}

func unsupported(n *node, op Op) error {
	if !knownOps[op.Op] {
		return errors.New("E121").WithDetailf("Unknown operation %q", op.Op).Wrap(ErrInvalidOp)
	}
	return errors.New("E122").
		WithDetailf("Collection %q of kind %s does not support %q", n.name, n.kind, op.Op).
		Wrap(ErrKindMismatch)
}

var knownOps = map[string]bool{
	OpAppend: true, OpInsert: true, OpRemove: true, OpSet: true, OpUpdate: true,
	OpMove: true, OpReplace: true, OpAdd: true, OpClear: true,
	OpSetFilter: true, OpSetApply: true,
}
