// Package scrproto implements the SCR (Simulated Car Racing) wire format:
// the sensor snapshot sent by the simulator and the actuator command sent
// back by the client. Payloads are ASCII text made of concatenated groups
// of the form "(key v1 v2 ...)".
package scrproto

import "strconv"

// Token is a single wire token after numeric coercion. Coercion is lenient:
// when the token cannot be parsed as a number, Raw keeps the original text
// and Numeric is false.
type Token struct {
	Num     float64
	Raw     string
	Numeric bool
}

func coerce(tok string) Token {
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return Token{Raw: tok}
	}
	return Token{Num: f, Numeric: true}
}

// Text returns the token as it should appear in diagnostics output.
func (t Token) Text() string {
	if !t.Numeric {
		return t.Raw
	}
	return strconv.FormatFloat(t.Num, 'g', -1, 64)
}

// Value is one decoded sensor reading: either a scalar (a group with exactly
// one token after the key) or an ordered sequence.
type Value struct {
	Scalar bool
	Tokens []Token
}

// Float returns the scalar numeric value. The second return is false when
// the value is a sequence or the token failed coercion.
func (v Value) Float() (float64, bool) {
	if !v.Scalar || len(v.Tokens) != 1 || !v.Tokens[0].Numeric {
		return 0, false
	}
	return v.Tokens[0].Num, true
}

// Floats returns the sequence as float64s. The second return is false when
// the value is scalar or any token failed coercion.
func (v Value) Floats() ([]float64, bool) {
	if v.Scalar {
		return nil, false
	}
	out := make([]float64, len(v.Tokens))
	for i, t := range v.Tokens {
		if !t.Numeric {
			return nil, false
		}
		out[i] = t.Num
	}
	return out, true
}

func scalarValue(tok Token) Value {
	return Value{Scalar: true, Tokens: []Token{tok}}
}

func seqValue(toks []Token) Value {
	return Value{Tokens: toks}
}
