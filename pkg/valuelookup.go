package stacklang

import "github.com/llir/llvm/ir/value"

// ValueLookup is a name -> SSA value table, carried forward from the
// teacher's LLVM codegen (the same structure it used to resolve builtin
// and local identifiers during IR emission).
type ValueLookup struct {
	vals map[string]value.Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{vals: make(map[string]value.Value)}
}

func (l *ValueLookup) Inherit(t2 *ValueLookup) {
	for k, v := range t2.vals {
		l.Set(k, v)
	}
}

func (l *ValueLookup) Get(id string) value.Value {
	if val, ok := l.vals[id]; ok {
		return val
	}
	panic("undefined identifier: " + id)
}

func (l *ValueLookup) Set(id string, val value.Value) {
	l.vals[id] = val
}
