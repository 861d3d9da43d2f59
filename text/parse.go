package text

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-hints/errors"
	"github.com/wippyai/wasm-hints/hints"
)

// ParsePayload parses one directive into a hint payload:
//
//	(@metadata.code.compilation_order (priority 1) (hotness 100))
//	(@metadata.code.instr_freq 0.5)
//	(@metadata.code.instr_freq never)
//	(@metadata.code.call_targets (target 1 0.73) (target 2 0.21))
//
// Instruction-frequency ratios convert through the log2 law with
// clamping; "never" and "always" map to the sentinels. Call-target
// weights are fractions of 1 converted to integer percent by rounding.
// A weight sum past 100% is not a parse error: the payload is built
// and the finding left to the validator, matching the binary decoder's
// tolerance.
func ParsePayload(src string) (hints.Payload, error) {
	return ParsePayloadIn(src, nil)
}

// ParsePayloadIn is ParsePayload with a symbol table resolving
// $name call targets to function indices.
func ParsePayloadIn(src string, syms map[string]uint32) (hints.Payload, error) {
	p := &parser{tokens: tokenize(src), syms: syms}
	payload, err := p.parseDirective()
	if err != nil {
		return hints.Payload{}, errors.ParseFailed("hint directive", err)
	}
	if tok := p.peek(); tok != nil {
		return hints.Payload{}, errors.ParseFailed("hint directive",
			fmt.Errorf("line %d: unexpected %q after directive", tok.line, tok.value))
	}
	return payload, nil
}

type parser struct {
	syms   map[string]uint32
	tokens []token
	pos    int
}

func (p *parser) peek() *token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) next() *token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) expect(typ tokenType) (*token, error) {
	t := p.next()
	if t == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if t.typ != typ {
		return nil, fmt.Errorf("line %d: expected %v, got %q", t.line, typ, t.value)
	}
	return t, nil
}

func (p *parser) parseDirective() (hints.Payload, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return hints.Payload{}, err
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return hints.Payload{}, err
	}
	if !strings.HasPrefix(name.value, "@") {
		return hints.Payload{}, fmt.Errorf("line %d: expected @-directive, got %q", name.line, name.value)
	}

	var payload hints.Payload
	switch name.value[1:] {
	case hints.SectionCompilationOrder:
		payload, err = p.parseCompilationOrder()
	case hints.SectionInstrFreq:
		payload, err = p.parseInstrFreq()
	case hints.SectionCallTargets:
		payload, err = p.parseCallTargets()
	default:
		return hints.Payload{}, fmt.Errorf("line %d: unknown directive %q", name.line, name.value)
	}
	if err != nil {
		return hints.Payload{}, err
	}

	if _, err := p.expect(tokRParen); err != nil {
		return hints.Payload{}, err
	}
	return payload, nil
}

func (p *parser) parseCompilationOrder() (hints.Payload, error) {
	order := &hints.CompilationOrder{}
	havePriority := false

	for {
		tok := p.peek()
		if tok == nil || tok.typ == tokRParen {
			break
		}

		switch tok.typ {
		case tokLParen:
			p.next()
			field, err := p.expect(tokIdent)
			if err != nil {
				return hints.Payload{}, err
			}
			v, err := p.parseU32()
			if err != nil {
				return hints.Payload{}, err
			}
			switch field.value {
			case "priority":
				order.Priority = v
				havePriority = true
			case "hotness":
				hotness := v
				order.Hotness = &hotness
			default:
				return hints.Payload{}, fmt.Errorf("line %d: unknown field %q", field.line, field.value)
			}
			if _, err := p.expect(tokRParen); err != nil {
				return hints.Payload{}, err
			}

		case tokNumber:
			// Bare trailing numbers are the forward-compatibility
			// overflow values.
			v, err := p.parseU32()
			if err != nil {
				return hints.Payload{}, err
			}
			order.Overflow = append(order.Overflow, v)

		default:
			return hints.Payload{}, fmt.Errorf("line %d: unexpected %q in compilation_order", tok.line, tok.value)
		}
	}

	if !havePriority {
		return hints.Payload{}, fmt.Errorf("compilation_order directive needs a priority field")
	}
	if len(order.Overflow) > 0 && order.Hotness == nil {
		return hints.Payload{}, fmt.Errorf("trailing values require a hotness field before them")
	}
	return hints.Payload{Kind: hints.PayloadCompilationOrder, Order: order}, nil
}

func (p *parser) parseInstrFreq() (hints.Payload, error) {
	tok := p.next()
	if tok == nil {
		return hints.Payload{}, fmt.Errorf("instr_freq directive needs a ratio or sentinel")
	}

	switch {
	case tok.typ == tokIdent && tok.value == "never":
		return hints.NewInstrFreq(hints.FreqNever), nil
	case tok.typ == tokIdent && tok.value == "always":
		return hints.NewInstrFreq(hints.FreqAlways), nil
	case tok.typ == tokNumber:
		ratio, err := strconv.ParseFloat(tok.value, 64)
		if err != nil {
			return hints.Payload{}, fmt.Errorf("line %d: bad ratio %q: %v", tok.line, tok.value, err)
		}
		if ratio < 0 {
			return hints.Payload{}, fmt.Errorf("line %d: ratio must be non-negative, got %v", tok.line, ratio)
		}
		return hints.NewInstrFreq(hints.Log2FreqOfRatio(ratio)), nil
	}
	return hints.Payload{}, fmt.Errorf("line %d: expected ratio, never or always, got %q", tok.line, tok.value)
}

func (p *parser) parseCallTargets() (hints.Payload, error) {
	var targets []hints.Target

	for {
		tok := p.peek()
		if tok == nil || tok.typ == tokRParen {
			break
		}
		if _, err := p.expect(tokLParen); err != nil {
			return hints.Payload{}, err
		}
		kw, err := p.expect(tokIdent)
		if err != nil {
			return hints.Payload{}, err
		}
		if kw.value != "target" {
			return hints.Payload{}, fmt.Errorf("line %d: expected target, got %q", kw.line, kw.value)
		}

		idx, err := p.parseFuncRef()
		if err != nil {
			return hints.Payload{}, err
		}

		wtok, err := p.expect(tokNumber)
		if err != nil {
			return hints.Payload{}, err
		}
		weight, err := strconv.ParseFloat(wtok.value, 64)
		if err != nil {
			return hints.Payload{}, fmt.Errorf("line %d: bad weight %q: %v", wtok.line, wtok.value, err)
		}
		if weight < 0 || weight > 1 {
			return hints.Payload{}, fmt.Errorf("line %d: weight %v outside 0..1", wtok.line, weight)
		}

		targets = append(targets, hints.Target{
			FuncIndex: idx,
			Percent:   uint32(math.Round(weight * 100)),
		})

		if _, err := p.expect(tokRParen); err != nil {
			return hints.Payload{}, err
		}
	}

	return hints.NewCallTargets(targets), nil
}

// parseFuncRef accepts a numeric function index or a $-symbol resolved
// through the parser's symbol table.
func (p *parser) parseFuncRef() (uint32, error) {
	tok := p.next()
	if tok == nil {
		return 0, fmt.Errorf("expected function reference")
	}
	if tok.typ == tokIdent && strings.HasPrefix(tok.value, "$") {
		if idx, ok := p.syms[tok.value[1:]]; ok {
			return idx, nil
		}
		return 0, fmt.Errorf("line %d: unknown function %q", tok.line, tok.value)
	}
	if tok.typ != tokNumber {
		return 0, fmt.Errorf("line %d: expected function index, got %q", tok.line, tok.value)
	}
	v, err := strconv.ParseUint(tok.value, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: bad function index %q: %v", tok.line, tok.value, err)
	}
	return uint32(v), nil
}

func (p *parser) parseU32() (uint32, error) {
	tok, err := p.expect(tokNumber)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok.value, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: bad value %q: %v", tok.line, tok.value, err)
	}
	return uint32(v), nil
}
