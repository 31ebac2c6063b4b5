package stacklang

import "fmt"

// Type is an immutable type descriptor. Pointer indirection is encoded by
// parent: PTR[T] is a Type whose parent is T. Equality is structural except
// for ANY, which matches anything.
type Type struct {
	name     string
	byteSize int
	parent   *Type
}

// ANY, INT, PTR, BOOL and CHAR are the five base types the checker knows
// about. PTR without an explicit parent reaches the abstract stack only
// through a `*ptr*` cast; Equal does not match it against PTR[T], and
// IsPointer and Deref treat it as a non-pointer.
var (
	ANY  = Type{name: "ANY", byteSize: 8}
	INT  = Type{name: "INT", byteSize: 8}
	PTR  = Type{name: "PTR", byteSize: 8}
	BOOL = Type{name: "BOOL", byteSize: 4}
	CHAR = Type{name: "CHAR", byteSize: 1}
)

// Ptr builds PTR[t].
func Ptr(t Type) Type {
	parent := t
	return Type{name: "PTR", byteSize: 8, parent: &parent}
}

// Size returns the byte size of the type.
func (t Type) Size() int { return t.byteSize }

// IsPointer reports whether t is some PTR[_].
func (t Type) IsPointer() bool { return t.name == "PTR" && t.parent != nil }

// Deref returns the pointee type of a PTR[T], or an error if t is not a
// pointer in the IsPointer sense.
func (t Type) Deref() (Type, error) {
	if !t.IsPointer() {
		return Type{}, fmt.Errorf("%s is not a pointer type", t)
	}
	return *t.parent, nil
}

// Equal implements the checker's equality rule: ANY matches anything,
// otherwise name and parent must match structurally.
func (t Type) Equal(o Type) bool {
	if t.name == "ANY" || o.name == "ANY" {
		return true
	}
	if t.name != o.name {
		return false
	}
	if t.parent == nil && o.parent == nil {
		return true
	}
	if t.parent == nil || o.parent == nil {
		return false
	}
	return t.parent.Equal(*o.parent)
}

// String renders a type the way the checker reports it in diagnostics,
// e.g. "PTR[PTR[CHAR]]".
func (t Type) String() string {
	if t.parent == nil {
		return t.name
	}
	return fmt.Sprintf("%s[%s]", t.name, t.parent.String())
}

// StrToType parses the CAST grammar: base ('*')*, where base is one of
// any|void|int|ptr|bool|char|byte|dword. any/void alias to ANY, byte
// aliases to CHAR, dword aliases to INT. Each trailing '*' adds one level
// of pointer indirection. Returns false if base is not recognized.
func StrToType(s string) (Type, bool) {
	depth := 0
	base := s
	for len(base) > 0 && base[len(base)-1] == '*' {
		base = base[:len(base)-1]
		depth++
	}

	var t Type
	switch base {
	case "any", "void":
		t = ANY
	case "int":
		t = INT
	case "ptr":
		t = PTR
	case "bool":
		t = BOOL
	case "char", "byte":
		t = CHAR
	case "dword":
		t = INT
	default:
		return Type{}, false
	}

	for i := 0; i < depth; i++ {
		t = Ptr(t)
	}
	return t, true
}
