package gosymdiff_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/njchilds90/gosymdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Tree form
// ============================================================

func TestToJSON(t *testing.T) {
	x := gosymdiff.Var("x")
	j, err := gosymdiff.ToJSON(gosymdiff.Add(x, gosymdiff.Const(2)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"add","a":{"type":"var","name":"x"},"b":{"type":"const","value":2}}`, j)

	j, err = gosymdiff.ToJSON(gosymdiff.Sin(x))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"sin","a":{"type":"var","name":"x"}}`, j)
}

func TestJSON_RoundTrip(t *testing.T) {
	s := gosymdiff.NewScope()
	a, b := s.Var("a"), s.Var("b")
	exprs := []*gosymdiff.Node{
		gosymdiff.Mul(gosymdiff.Sqrt(gosymdiff.Pow(a, b)), gosymdiff.Log(b)),
		gosymdiff.Div(gosymdiff.Neg(a), gosymdiff.Abs(gosymdiff.Tan(b))),
		gosymdiff.Sub(gosymdiff.Sign(a), gosymdiff.Exp(gosymdiff.Cos(b))),
	}
	for _, e := range exprs {
		j, err := gosymdiff.ToJSON(e)
		require.NoError(t, err)
		back, err := gosymdiff.ParseJSON([]byte(j))
		require.NoError(t, err)
		assert.Equal(t, e.String(), back.String())
	}
}

func TestJSON_MarshalNode(t *testing.T) {
	data, err := json.Marshal(struct {
		Expr *gosymdiff.Node `json:"expr"`
	}{gosymdiff.Neg(gosymdiff.Var("q"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"expr":{"type":"neg","a":{"type":"var","name":"q"}}}`, string(data))
}

func TestParseJSON_InternsVariables(t *testing.T) {
	n, err := gosymdiff.ParseJSON([]byte(`{"type":"mul","a":{"type":"var","name":"x"},"b":{"type":"var","name":"x"}}`))
	require.NoError(t, err)
	ops := n.Operands()
	assert.Same(t, ops[0], ops[1])
	assert.Equal(t, "((x * 1) + (x * 1))", gosymdiff.Derivative(n, ops[0]).String())
}

func TestParseJSONScope_SharesWithCaller(t *testing.T) {
	s := gosymdiff.NewScope()
	x := s.Var("x")
	n, err := gosymdiff.ParseJSONScope([]byte(`{"type":"exp","a":{"type":"var","name":"x"}}`), s)
	require.NoError(t, err)
	assert.Equal(t, "(exp(x) * 1)", gosymdiff.Derivative(n, x).String())
}

func TestParseJSON_TokenForms(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"type":"func","name":"sqrt","arg":{"type":"var","name":"x"}}`, "(x ^ 0.5)"},
		{`{"type":"func","name":"abs","arg":{"type":"var","name":"x"}}`, "abs(x)"},
		{`{"type":"op","op":"-","a":{"type":"var","name":"x"}}`, "(-x)"},
		{`{"type":"op","op":"-","a":{"type":"var","name":"x"},"b":{"type":"const","value":1}}`, "(x - 1)"},
		{`{"type":"op","op":"^","a":{"type":"var","name":"x"},"b":{"type":"const","value":3}}`, "(x ^ 3)"},
		{`{"type":"op","op":"/","a":{"type":"const","value":1},"b":{"type":"var","name":"x"}}`, "(1 / x)"},
		{`{"type":"const","value":"2.5"}`, "2.5"},
	}
	for _, tc := range cases {
		n, err := gosymdiff.ParseJSON([]byte(tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, n.String(), tc.in)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{`{"value":1}`, gosymdiff.ErrMalformedExpression},
		{`{"type":7}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"const"}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"const","value":"abc"}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"const","value":true}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"var"}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"var","name":""}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"sin"}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"sin","a":3}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"add","a":{"type":"var","name":"x"}}`, gosymdiff.ErrMalformedExpression},
		{`{"type":"mod","a":{"type":"var","name":"x"},"b":{"type":"var","name":"y"}}`, gosymdiff.ErrUnsupportedOperator},
		{`{"type":"op","op":"%","a":{"type":"var","name":"x"},"b":{"type":"var","name":"y"}}`, gosymdiff.ErrUnsupportedOperator},
		{`{"type":"op","op":"*","a":{"type":"var","name":"x"}}`, gosymdiff.ErrUnsupportedOperator},
		{`{"type":"func","name":"sinh","arg":{"type":"var","name":"x"}}`, gosymdiff.ErrUnsupportedFunction},
		{`{"type":"add","a":{"type":"var","name":"x"},"b":{"type":"nope"}}`, gosymdiff.ErrUnsupportedOperator},
	}
	for _, tc := range cases {
		_, err := gosymdiff.ParseJSON([]byte(tc.in))
		assert.ErrorIs(t, err, tc.want, tc.in)
	}

	_, err := gosymdiff.ParseJSON([]byte(`not json`))
	assert.Error(t, err)
	_, err = gosymdiff.FromJSON(nil)
	assert.ErrorIs(t, err, gosymdiff.ErrMalformedExpression)
}

// ============================================================
// Non-finite numbers
// ============================================================

func TestFloat_NonFinite(t *testing.T) {
	for _, tc := range []struct {
		v    float64
		want string
	}{
		{math.NaN(), `"NaN"`},
		{math.Inf(1), `"+Inf"`},
		{math.Inf(-1), `"-Inf"`},
		{1.5, `1.5`},
	} {
		data, err := json.Marshal(gosymdiff.Float(tc.v))
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(data))
	}

	var f gosymdiff.Float
	require.NoError(t, json.Unmarshal([]byte(`"-Inf"`), &f))
	assert.True(t, math.IsInf(float64(f), -1))
	require.NoError(t, json.Unmarshal([]byte(`0.25`), &f))
	assert.Equal(t, gosymdiff.Float(0.25), f)
	assert.Error(t, json.Unmarshal([]byte(`"big"`), &f))
}

func TestJSON_NaNConstRoundTrip(t *testing.T) {
	j, err := gosymdiff.ToJSON(gosymdiff.Const(math.NaN()))
	require.NoError(t, err)
	n, err := gosymdiff.ParseJSON([]byte(j))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(n.Value()))
}
