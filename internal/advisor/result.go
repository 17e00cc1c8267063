package advisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind names the payload a successful Result carries.
type Kind string

const (
	KindInsights Kind = "insights"
	KindStrategy Kind = "strategy"
)

// Result is the outcome of a single-answer operation: either generated text
// under Kind, or an error message. Exactly one of Text and Error is set.
type Result struct {
	Kind  Kind
	Text  string
	Error string
}

func errorResult(msg string) Result { return Result{Error: msg} }

// Failed reports whether the result carries an error message.
func (r Result) Failed() bool { return r.Error != "" }

// MarshalJSON renders a single-key object: {"insights": ...},
// {"strategy": ...} or {"error": ...}. A result with neither an error nor a
// Kind renders as {}.
func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Failed():
		return json.Marshal(map[string]string{"error": r.Error})
	case r.Kind == "":
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string{string(r.Kind): r.Text})
}

func (r Result) String() string {
	if r.Failed() {
		return "error: " + r.Error
	}
	return r.Text
}

// Prediction is one symbol's entry in a prediction batch.
type Prediction struct {
	Symbol string
	Text   string
	Error  string
}

// Failed reports whether no prediction text was produced for the symbol.
func (p Prediction) Failed() bool { return p.Error != "" }

// Value is the prediction text, or the failure message.
func (p Prediction) Value() string {
	if p.Failed() {
		return p.Error
	}
	return p.Text
}

// Predictions maps symbols to outcomes, preserving first-seen order.
type Predictions []Prediction

// Get returns the entry for symbol.
func (ps Predictions) Get(symbol string) (Prediction, bool) {
	for _, p := range ps {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Prediction{}, false
}

// set inserts p, or replaces an existing entry for the same symbol in place.
func (ps Predictions) set(p Prediction) Predictions {
	for i := range ps {
		if ps[i].Symbol == p.Symbol {
			ps[i] = p
			return ps
		}
	}
	return append(ps, p)
}

// MarshalJSON renders an object keyed by symbol in batch order.
func (ps Predictions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Symbol)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (ps Predictions) String() string {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s", p.Symbol, p.Value())
	}
	return b.String()
}
