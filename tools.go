package gosymdiff

import (
	"encoding/json"
	"math/big"
	"slices"

	"github.com/pkg/errors"
)

// ============================================================
// Tool interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// DerivativeResult is the payload of the derivative and gradient tools.
type DerivativeResult struct {
	Expr   *Node  `json:"expr"`
	String string `json:"string"`
	Value  *Float `json:"value,omitempty"`
}

// ToolHandler serves tool calls. The zero value has no limits and caches
// evaluations within a request.
type ToolHandler struct {
	// MaxPaths rejects differentiation requests whose expression would emit
	// more chain-rule pairs than this. Zero means unlimited.
	MaxPaths int64
	// NoCache evaluates without an Evaluator table.
	NoCache bool
}

var defaultToolHandler ToolHandler

// HandleToolCall serves req with an unlimited default handler.
func HandleToolCall(req ToolRequest) ToolResponse { return defaultToolHandler.Handle(req) }

// Tools lists the tool names Handle accepts, sorted.
func Tools() []string {
	names := make([]string, 0, len(toolSchemas))
	for _, t := range toolSchemas {
		names = append(names, t.name)
	}
	slices.Sort(names)
	return names
}

// Handle serves req, reporting any failure in the response's Error field.
func (h ToolHandler) Handle(req ToolRequest) ToolResponse {
	resp, err := h.Call(req)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	return resp
}

// Call serves req and returns failures as errors wrapping ErrInvalidParams,
// ErrUnknownTool, ErrPathLimit, ErrUndefinedVariable or a decode sentinel.
func (h ToolHandler) Call(req ToolRequest) (ToolResponse, error) {
	scope := NewScope()
	getExpr := func(key string) (*Node, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidParams, "missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrInvalidParams, "invalid type for param %s", key)
		}
		return FromJSONScope(val, scope)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", errors.Wrapf(ErrInvalidParams, "missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", errors.Wrapf(ErrInvalidParams, "param %s must be a string", key)
		}
		return s, nil
	}
	getStrings := func(key string) ([]string, bool, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, false, nil
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, true, errors.Wrapf(ErrInvalidParams, "param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, true, errors.Wrapf(ErrInvalidParams, "param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, true, nil
	}
	getBindings := func(key string) (Bindings, bool, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, false, nil
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, true, errors.Wrapf(ErrInvalidParams, "param %s must be an object", key)
		}
		b := make(Bindings, len(raw))
		for name, r := range raw {
			f, err := floatFrom(r)
			if err != nil {
				return nil, true, errors.Wrapf(err, "param %s.%s", key, name)
			}
			b[name] = f
		}
		return b, true, nil
	}
	checkPaths := func(e *Node) error {
		if h.MaxPaths <= 0 {
			return nil
		}
		if paths := CountPaths(e); paths.Cmp(big.NewInt(h.MaxPaths)) > 0 {
			return errors.Wrapf(ErrPathLimit, "expression has %s derivative paths, limit is %d", paths, h.MaxPaths)
		}
		return nil
	}
	fail := func(err error) (ToolResponse, error) { return ToolResponse{}, err }

	var ev *Evaluator
	if h.NoCache {
		ev = NewEvaluator(WithCacheDisabled())
	} else {
		ev = NewEvaluator()
	}
	describe := func(d *Node, b Bindings, evaluate bool) (DerivativeResult, error) {
		r := DerivativeResult{Expr: d, String: d.String()}
		if evaluate {
			v, err := ev.Eval(d, b)
			if err != nil {
				return r, err
			}
			f := Float(v)
			r.Value = &f
		}
		return r, nil
	}

	switch req.Tool {
	case "evaluate":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		b, _, err := getBindings("bindings")
		if err != nil {
			return fail(err)
		}
		v, err := ev.Eval(e, b)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: Float(v), String: formatFloat(v)}, nil

	case "derivative":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		name, err := getString("var")
		if err != nil {
			return fail(err)
		}
		b, evaluate, err := getBindings("bindings")
		if err != nil {
			return fail(err)
		}
		if err := checkPaths(e); err != nil {
			return fail(err)
		}
		target, ok := scope.Lookup(name)
		if !ok {
			// Not in the expression: the derivative is zero.
			target = Var(name)
		}
		r, err := describe(Derivative(e, target), b, evaluate)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: r, String: r.String, LaTeX: r.Expr.LaTeX()}, nil

	case "gradient":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		names, given, err := getStrings("vars")
		if err != nil {
			return fail(err)
		}
		if !given {
			names = scope.Names()
		}
		b, evaluate, err := getBindings("bindings")
		if err != nil {
			return fail(err)
		}
		if err := checkPaths(e); err != nil {
			return fail(err)
		}
		targets := make([]*Node, len(names))
		for i, name := range names {
			targets[i] = scope.Var(name)
		}
		grads := Gradient(e, targets...)
		out := make(map[string]DerivativeResult, len(names))
		for i, name := range names {
			r, err := describe(grads[i], b, evaluate)
			if err != nil {
				return fail(err)
			}
			out[name] = r
		}
		return ToolResponse{Result: out}, nil

	case "variables":
		if _, err := getExpr("expr"); err != nil {
			return fail(err)
		}
		return ToolResponse{Result: scope.Names()}, nil

	case "to_string":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: e.String(), String: e.String()}, nil

	case "to_latex":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: e.LaTeX(), LaTeX: e.LaTeX()}, nil

	case "flatten":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: Flatten(e), String: e.String()}, nil

	case "count_paths":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		paths := CountPaths(e)
		return ToolResponse{Result: paths.String(), String: paths.String()}, nil

	case "tool_spec":
		return ToolResponse{Result: ToolSpec(), String: "tool specification"}, nil
	}

	return fail(errors.Wrapf(ErrUnknownTool, "%q", req.Tool))
}

// ============================================================
// Tool schema
// ============================================================

type toolSchema struct {
	name        string
	description string
	required    []string
	props       map[string]string
}

var toolSchemas = []toolSchema{
	{"evaluate", "Evaluate an expression. bindings maps variable names to numbers", []string{"expr"}, map[string]string{"expr": "object", "bindings": "object"}},
	{"derivative", "Reverse-mode derivative d(expr)/d(var). Optional bindings also evaluate it", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string", "bindings": "object"}},
	{"gradient", "Derivatives with respect to vars (default: all variables) in one backward pass", []string{"expr"}, map[string]string{"expr": "object", "vars": "array", "bindings": "object"}},
	{"variables", "Variable names used by an expression", []string{"expr"}, map[string]string{"expr": "object"}},
	{"to_string", "Fully parenthesized rendering", []string{"expr"}, map[string]string{"expr": "object"}},
	{"to_latex", "LaTeX rendering", []string{"expr"}, map[string]string{"expr": "object"}},
	{"flatten", "Sharing-preserving tape form for compiled evaluators", []string{"expr"}, map[string]string{"expr": "object"}},
	{"count_paths", "Number of chain-rule pairs a derivative walk emits", []string{"expr"}, map[string]string{"expr": "object"}},
	{"tool_spec", "Return this tool schema", []string{}, map[string]string{}},
}

// ToolSpec returns the JSON schema of every tool, for agent registration.
func ToolSpec() string {
	tools := make([]map[string]interface{}, len(toolSchemas))
	for i, t := range toolSchemas {
		tools[i] = ts(t.name, t.description, t.required, t.props)
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
