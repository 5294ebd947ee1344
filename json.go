package gosymdiff

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// ============================================================
// JSON tree form
// ============================================================
//
//	{"type": "const", "value": 2}
//	{"type": "var", "name": "x"}
//	{"type": "sin", "a": {...}}
//	{"type": "pow", "a": {...}, "b": {...}}
//
// Builders may also use token forms, resolved through the token table:
//
//	{"type": "func", "name": "sqrt", "arg": {...}}
//	{"type": "op", "op": "^", "a": {...}, "b": {...}}
//	{"type": "op", "op": "-", "a": {...}}
//
// The tree form repeats shared sub-expressions at every occurrence; use
// Flatten for a form that keeps sharing.

// Float is a float64 that survives JSON: non-finite values are written as
// the strings "NaN", "+Inf" and "-Inf".
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := floatFrom(raw)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func floatFrom(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrMalformedExpression, "invalid number %q", v)
		}
		return f, nil
	}
	return 0, errors.Wrapf(ErrMalformedExpression, "value must be a number, got %T", raw)
}

func (n *Node) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": n.kind.String()}
	switch n.kind {
	case KindConst:
		m["value"] = Float(n.value)
	case KindVar:
		m["name"] = n.name
	default:
		m["a"] = n.a.toJSON()
		if n.b != nil {
			m["b"] = n.b.toJSON()
		}
	}
	return m
}

func (n *Node) MarshalJSON() ([]byte, error) { return json.Marshal(n.toJSON()) }

func ToJSON(n *Node) (string, error) {
	b, err := json.Marshal(n.toJSON())
	return string(b), err
}

// ParseJSON decodes a tree-form expression, interning variables in a fresh
// Scope.
func ParseJSON(data []byte) (*Node, error) {
	return ParseJSONScope(data, NewScope())
}

// ParseJSONScope decodes a tree-form expression, taking variables from scope.
func ParseJSONScope(data []byte, scope *Scope) (*Node, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decode expression")
	}
	return FromJSONScope(m, scope)
}

// FromJSON builds a node from an already-decoded tree-form object.
func FromJSON(data map[string]interface{}) (*Node, error) {
	return FromJSONScope(data, NewScope())
}

func FromJSONScope(data map[string]interface{}, scope *Scope) (*Node, error) {
	if data == nil {
		return nil, errors.Wrap(ErrMalformedExpression, "expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, errors.Wrap(ErrMalformedExpression, "missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, errors.Wrap(ErrMalformedExpression, "field 'type' must be a non-empty string")
	}

	sub := func(field string) (*Node, error) {
		v, ok := data[field]
		if !ok {
			return nil, errors.Wrapf(ErrMalformedExpression, "%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrMalformedExpression, "%s: %q must be an object", typ, field)
		}
		n, err := FromJSONScope(m, scope)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", typ, field)
		}
		return n, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", errors.Wrapf(ErrMalformedExpression, "%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", errors.Wrapf(ErrMalformedExpression, "%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "const":
		raw, ok := data["value"]
		if !ok {
			return nil, errors.Wrap(ErrMalformedExpression, "const: missing 'value'")
		}
		v, err := floatFrom(raw)
		if err != nil {
			return nil, errors.Wrap(err, "const")
		}
		return Const(v), nil

	case "var":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return scope.Var(name), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		f, err := LookupFunction(name)
		if err != nil {
			return nil, err
		}
		arg, err := sub("arg")
		if err != nil {
			return nil, err
		}
		return f(arg), nil

	case "op":
		tok, err := subString("op")
		if err != nil {
			return nil, err
		}
		a, err := sub("a")
		if err != nil {
			return nil, err
		}
		if _, binary := data["b"]; !binary {
			f, err := LookupUnary(tok)
			if err != nil {
				return nil, err
			}
			return f(a), nil
		}
		f, err := LookupOperator(tok)
		if err != nil {
			return nil, err
		}
		b, err := sub("b")
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}

	kind, ok := ParseKind(typ)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedOperator, "expression type %q", typ)
	}
	a, err := sub("a")
	if err != nil {
		return nil, err
	}
	if kind.Arity() == 1 {
		return NewUnary(kind, a)
	}
	b, err := sub("b")
	if err != nil {
		return nil, err
	}
	return NewBinary(kind, a, b)
}
