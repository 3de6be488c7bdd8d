package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/lexer"
	"github.com/iley/gifscript/internal/registers"
	"github.com/iley/gifscript/internal/types"
)

// Sink receives the builder events of a parsed file. *machine.Machine
// implements it.
type Sink interface {
	StartBlock(name string) error
	StartMacro(name string) error
	EndBlockMacro() error
	SetRegister(id ir.RegID) error
	PushInt(i uint32) error
	PushVec2(v types.Vec2) error
	PushVec3(v types.Vec3) error
	PushVec4(v types.Vec4) error
	ApplyModifier(mod registers.Modifier) error
	InsertMacro(name string) error
	InsertMacroOffset(name string, off types.Vec2) error
}

// Error is a syntax error or a rejected event, with the location of the
// lexeme that caused it.
type Error struct {
	Loc lexer.Location
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Parser struct {
	lexer   *lexer.Lexer
	sink    Sink
	lexemes []lexer.Lexeme
	pos     int
}

func New(lex *lexer.Lexer, sink Sink) *Parser {
	return &Parser{lexer: lex, sink: sink}
}

func (p *Parser) consume() (lexer.Lexeme, error) {
	lex, err := p.peek()
	if err != nil {
		return lexer.Lexeme{}, err
	}
	p.pos++
	return lex, nil
}

func (p *Parser) peek() (lexer.Lexeme, error) {
	if p.pos >= len(p.lexemes) {
		lex, err := p.lexer.Next()
		if err != nil {
			return lexer.Lexeme{}, err
		}
		p.lexemes = append(p.lexemes, lex)
	}
	return p.lexemes[p.pos], nil
}

func (p *Parser) expectPunctuation(pv string) (lexer.Lexeme, error) {
	lex, err := p.consume()
	if err != nil {
		return lex, err
	}
	if !lex.IsPunctuation(pv) {
		return lex, &Error{Loc: lex.Loc, Err: fmt.Errorf("expected '%s', got %v", pv, lex)}
	}
	return lex, nil
}

func (p *Parser) expectIdent(what string) (lexer.Lexeme, error) {
	lex, err := p.consume()
	if err != nil {
		return lex, err
	}
	if lex.Type != lexer.LEX_IDENT {
		return lex, &Error{Loc: lex.Loc, Err: fmt.Errorf("expected %s, got %v", what, lex)}
	}
	return lex, nil
}

// event reports a failed sink call at the location of lex.
func event(lex lexer.Lexeme, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Loc: lex.Loc, Err: err}
}

// Parse reads the whole input and feeds it to the sink.
func (p *Parser) Parse() error {
	for {
		lex, err := p.peek()
		if err != nil {
			return err
		}
		if lex.Type == lexer.LEX_EOF {
			return nil
		}
		if err := p.parseItem(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseItem() error {
	lex, err := p.consume()
	if err != nil {
		return err
	}

	isMacro := lex.IsKeyword("macro")
	nameLex := lex
	if isMacro {
		nameLex, err = p.expectIdent("macro name")
		if err != nil {
			return err
		}
	} else if lex.Type != lexer.LEX_IDENT {
		return &Error{Loc: lex.Loc, Err: fmt.Errorf("expected block or macro definition, got %v", lex)}
	}

	if _, err := p.expectPunctuation("{"); err != nil {
		return err
	}
	if isMacro {
		err = p.sink.StartMacro(nameLex.Str)
	} else {
		err = p.sink.StartBlock(nameLex.Str)
	}
	if err != nil {
		return event(nameLex, err)
	}

	for {
		lex, err := p.peek()
		if err != nil {
			return err
		}
		if lex.IsPunctuation("}") {
			p.pos++
			return event(lex, p.sink.EndBlockMacro())
		}
		if lex.Type == lexer.LEX_EOF {
			return &Error{Loc: lex.Loc, Err: fmt.Errorf("unexpected end of file in %s", nameLex.Str)}
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseStatement() error {
	head, err := p.expectIdent("register or macro name")
	if err != nil {
		return err
	}

	id, isReg := ir.RegIDFromName(head.Str)
	if !isReg {
		return p.parseMacroInsertion(head)
	}
	if err := event(head, p.sink.SetRegister(id)); err != nil {
		return err
	}

	for {
		lex, err := p.peek()
		if err != nil {
			return err
		}
		switch {
		case lex.IsPunctuation(";"):
			p.pos++
			return nil
		case lex.Type == lexer.LEX_NUMBER:
			v, err := p.parseValue()
			if err != nil {
				return err
			}
			if err := event(lex, push(p.sink, v)); err != nil {
				return err
			}
		case lex.Type == lexer.LEX_IDENT:
			p.pos++
			mod, ok := registers.ModifierFromName(lex.Str)
			if !ok {
				return &Error{Loc: lex.Loc, Err: fmt.Errorf("unknown modifier %s", lex.Str)}
			}
			if err := event(lex, p.sink.ApplyModifier(mod)); err != nil {
				return err
			}
		default:
			return &Error{Loc: lex.Loc, Err: fmt.Errorf("expected value, modifier or ';', got %v", lex)}
		}
	}
}

// parseMacroInsertion handles "NAME;" and "NAME x,y;".
func (p *Parser) parseMacroInsertion(head lexer.Lexeme) error {
	lex, err := p.peek()
	if err != nil {
		return err
	}
	if lex.IsPunctuation(";") {
		p.pos++
		return event(head, p.sink.InsertMacro(head.Str))
	}
	if lex.Type != lexer.LEX_NUMBER {
		return &Error{Loc: lex.Loc, Err: fmt.Errorf("expected ';' or offset after %s, got %v", head.Str, lex)}
	}

	v, err := p.parseValue()
	if err != nil {
		return err
	}
	off, ok := v.(types.Vec2)
	if !ok {
		return &Error{Loc: lex.Loc, Err: fmt.Errorf("macro offset must be a Vec2, got %d components", v.Arity())}
	}
	if _, err := p.expectPunctuation(";"); err != nil {
		return err
	}
	return event(head, p.sink.InsertMacroOffset(head.Str, off))
}

// parseValue reads NUMBER ("," NUMBER)* and types it by the component count.
func (p *Parser) parseValue() (types.Value, error) {
	first, err := p.consume()
	if err != nil {
		return nil, err
	}
	parts := []string{first.Str}
	for {
		lex, err := p.peek()
		if err != nil {
			return nil, err
		}
		if !lex.IsPunctuation(",") {
			break
		}
		p.pos++
		lex, err = p.consume()
		if err != nil {
			return nil, err
		}
		if lex.Type != lexer.LEX_NUMBER {
			return nil, &Error{Loc: lex.Loc, Err: fmt.Errorf("expected number after ',', got %v", lex)}
		}
		parts = append(parts, lex.Str)
	}

	v, err := types.ParseValue(strings.Join(parts, ","))
	if err != nil {
		return nil, &Error{Loc: first.Loc, Err: err}
	}
	return v, nil
}

func push(sink Sink, v types.Value) error {
	switch v := v.(type) {
	case types.Scalar:
		return sink.PushInt(uint32(v))
	case types.Vec2:
		return sink.PushVec2(v)
	case types.Vec3:
		return sink.PushVec3(v)
	case types.Vec4:
		return sink.PushVec4(v)
	}
	return errors.New("unsupported value")
}
