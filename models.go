// models.go — syntax values for the macro expander
//
// WHAT THIS MODULE DOES
// =====================
// Trees handed to the expander are built from a small tagged variant, Object:
//
//	*Symbol     — an identifier, stored unmangled (display spelling)
//	*Literal    — any non-form payload (numbers, strings, booleans, nil, or an
//	              opaque value a macro chose to thread through)
//	*Expression — an ordered sequence of Objects
//
// Every node carries an optional *Position so diagnostics can point back at the
// original source. Positions ride on the nodes themselves rather than in a
// sidecar index: macro expansion freely rearranges and replaces nodes, and
// Replace (below) copies the call-form's position onto replacement nodes that
// lack their own, so a path-keyed index could not follow them.
//
// PUBLIC API
// ----------
//   - Sym / Lit / Expr           — constructors
//   - AsModel(v) Object          — normalize an arbitrary macro return value
//   - Replace(obj, other) Object — fill missing positions from `other`, recursively
//   - IsUnpack(kind, x) bool     — detect (unpack-<kind> ...) forms
//   - Equal(a, b) bool           — structural equality, positions ignored
//
// The expander never treats an empty Expression as a macro call; see expand.go.
package hy

// Version of the expansion core, shown by the REPL banner.
const Version = "0.1.0"

// Position is a 1-based source location. End coordinates are optional (0 when
// the producer only knows where a form starts).
type Position struct {
	Line, Col       int
	EndLine, EndCol int
}

// Object is the tagged variant all syntax trees are made of.
type Object interface {
	// Pos returns the node's source position, or nil.
	Pos() *Position
	// SetPos attaches a position to the node.
	SetPos(*Position)
}

// Symbol is an identifier, stored in its surface spelling (mangling happens at
// table boundaries, not in the tree).
type Symbol struct {
	Name     string
	Position *Position
}

// Literal boxes any non-form payload.
type Literal struct {
	Val      any
	Position *Position
}

// Expression is an ordered sequence of Objects.
type Expression struct {
	Items    []Object
	Position *Position
}

func (s *Symbol) Pos() *Position      { return s.Position }
func (s *Symbol) SetPos(p *Position)  { s.Position = p }
func (l *Literal) Pos() *Position     { return l.Position }
func (l *Literal) SetPos(p *Position) { l.Position = p }
func (e *Expression) Pos() *Position  { return e.Position }
func (e *Expression) SetPos(p *Position) {
	e.Position = p
}

// Sym returns a fresh Symbol.
func Sym(name string) *Symbol { return &Symbol{Name: name} }

// Lit returns a fresh Literal.
func Lit(v any) *Literal { return &Literal{Val: v} }

// Expr returns a fresh Expression over the given items.
func Expr(items ...Object) *Expression { return &Expression{Items: items} }

// AsModel normalizes an arbitrary value into an Object. Objects pass through
// unchanged; slices become Expressions (normalizing each element); plain Go
// scalars become Literals. Values the model has no shape for are boxed as
// opaque Literals rather than rejected, so macros may thread host values
// through a tree as long as nothing downstream tries to print them as source.
func AsModel(v any) Object {
	switch x := v.(type) {
	case Object:
		return x
	case []Object:
		items := make([]Object, len(x))
		for i, it := range x {
			items[i] = AsModel(it)
		}
		return &Expression{Items: items}
	case []any:
		items := make([]Object, len(x))
		for i, it := range x {
			items[i] = AsModel(it)
		}
		return &Expression{Items: items}
	case nil:
		return &Literal{Val: nil}
	case bool, int64, float64, string:
		return &Literal{Val: x}
	case int:
		return &Literal{Val: int64(x)}
	default:
		return &Literal{Val: x}
	}
}

// Replace fills in missing positions on obj (recursively) from other and
// returns obj. Nodes that already carry a position keep it, so replacement
// trees produced by a macro still point at the macro call that introduced
// them while untouched subtrees keep their original coordinates.
func Replace(obj, other Object) Object {
	if other == nil {
		return obj
	}
	p := other.Pos()
	if p == nil {
		return obj
	}
	fill(obj, p)
	return obj
}

func fill(obj Object, p *Position) {
	if obj.Pos() == nil {
		obj.SetPos(p)
	}
	if e, ok := obj.(*Expression); ok {
		for _, it := range e.Items {
			fill(it, p)
		}
	}
}

// IsUnpack reports whether x is an (unpack-<kind> ...) form, e.g.
// IsUnpack("iterable", x) matches (unpack-iterable xs).
func IsUnpack(kind string, x Object) bool {
	e, ok := x.(*Expression)
	if !ok || len(e.Items) == 0 {
		return false
	}
	h, ok := e.Items[0].(*Symbol)
	return ok && h.Name == "unpack-"+kind
}

// Equal compares two trees structurally, ignoring positions. Literal payloads
// compare with ==, except float/int literals which never compare equal across
// kinds (no numeric coercion).
func Equal(a, b Object) bool {
	switch x := a.(type) {
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x.Name == y.Name
	case *Literal:
		y, ok := b.(*Literal)
		return ok && literalEq(x.Val, y.Val)
	case *Expression:
		y, ok := b.(*Expression)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func literalEq(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	// Uncomparable payloads (slices, maps) compare unequal instead of panicking.
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// headString renders a call-form's head for diagnostics ("expanding macro X").
func headString(form *Expression) string {
	if len(form.Items) == 0 {
		return "()"
	}
	return PrintStr(form.Items[0])
}
