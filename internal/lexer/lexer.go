package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

type TokenType int

// Token types
const (
	LEX_EOF TokenType = iota
	LEX_IDENT
	LEX_NUMBER
	LEX_KEYWORD
	LEX_PUNCTUATION
)

func (t TokenType) String() string {
	switch t {
	case LEX_EOF:
		return "EOF"
	case LEX_IDENT:
		return "IDENT"
	case LEX_NUMBER:
		return "NUMBER"
	case LEX_KEYWORD:
		return "KEYWORD"
	case LEX_PUNCTUATION:
		return "PUNCTUATION"
	default:
		return "UNKNOWN"
	}
}

var keywords = map[string]bool{
	"macro": true,
}

var punctuation = map[rune]bool{
	'{': true,
	'}': true,
	';': true,
	',': true,
}

type Location struct {
	Filename string
	Line     int
	Col      int
}

func (l Location) String() string {
	if l.Filename == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Col)
}

type Lexeme struct {
	Type TokenType
	Str  string
	Loc  Location
}

func (l Lexeme) String() string {
	if l.Str == "" {
		return fmt.Sprintf("<%s>", l.Type)
	}
	return fmt.Sprintf("<%s %q>", l.Type, l.Str)
}

func (l Lexeme) IsKeyword(kv string) bool {
	return l.Type == LEX_KEYWORD && l.Str == kv
}

func (l Lexeme) IsPunctuation(pv string) bool {
	return l.Type == LEX_PUNCTUATION && l.Str == pv
}

type Lexer struct {
	input     *bufio.Reader
	filename  string
	line      int
	col       int
	prevCol   int
	lastRune  rune
	lastSize  int
	hasUnread bool
}

func New(inputReader io.Reader, filename string) *Lexer {
	return &Lexer{
		input:    bufio.NewReader(inputReader),
		filename: filename,
		line:     1,
		col:      1,
		prevCol:  1,
	}
}

func (l *Lexer) loc(line, col int) Location {
	return Location{Filename: l.filename, Line: line, Col: col}
}

// readRune reads the next rune from the input
func (l *Lexer) readRune() (rune, int, error) {
	var r rune
	var size int
	var err error

	if l.hasUnread {
		l.hasUnread = false
		r, size, err = l.lastRune, l.lastSize, nil
	} else {
		r, size, err = l.input.ReadRune()
	}

	if err != nil {
		return 0, 0, err
	}

	l.prevCol = l.col
	l.lastRune = r
	l.lastSize = size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, size, nil
}

// unreadRune puts back the last read rune.
// Should be called at most once per readRune.
func (l *Lexer) unreadRune() {
	l.hasUnread = true
	if l.lastRune == '\n' {
		l.line--
	}
	l.col = l.prevCol
}

// peekRune returns the next rune without consuming it. It returns 0 at EOF.
func (l *Lexer) peekRune() (rune, error) {
	r, _, err := l.readRune()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	l.unreadRune()
	return r, nil
}

// skipSpace skips whitespace characters
func (l *Lexer) skipSpace() error {
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !unicode.IsSpace(r) {
			l.unreadRune()
			return nil
		}
	}
}

// skipLineComment skips from // to end of line
func (l *Lexer) skipLineComment() error {
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

// skipBlockComment skips to the closing */.
func (l *Lexer) skipBlockComment(start Location) error {
	prev := rune(0)
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("%s: unterminated comment", start)
			}
			return err
		}
		if prev == '*' && r == '/' {
			return nil
		}
		prev = r
	}
}

// Next returns the next lexeme from the input
func (l *Lexer) Next() (Lexeme, error) {
	for {
		if err := l.skipSpace(); err != nil {
			return Lexeme{Type: LEX_EOF}, err
		}
		startLine := l.line
		startCol := l.col
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return Lexeme{Type: LEX_EOF, Loc: l.loc(startLine, startCol)}, nil
			}
			return Lexeme{Type: LEX_EOF}, err
		}

		switch {
		case unicode.IsLetter(r) || r == '_':
			l.unreadRune()
			return l.lexIdent(startLine, startCol)
		case unicode.IsDigit(r) || r == '-' || r == '.':
			l.unreadRune()
			return l.lexNumber(startLine, startCol)
		case r == '/':
			next, _, err := l.readRune()
			if err != nil && err != io.EOF {
				return Lexeme{Type: LEX_EOF}, err
			}
			switch {
			case err == nil && next == '/':
				if err := l.skipLineComment(); err != nil {
					return Lexeme{Type: LEX_EOF}, err
				}
				continue
			case err == nil && next == '*':
				if err := l.skipBlockComment(l.loc(startLine, startCol)); err != nil {
					return Lexeme{Type: LEX_EOF}, err
				}
				continue
			}
			return Lexeme{Type: LEX_EOF}, fmt.Errorf("%s: unexpected character '/'", l.loc(startLine, startCol))
		case punctuation[r]:
			return Lexeme{
				Type: LEX_PUNCTUATION,
				Str:  string(r),
				Loc:  l.loc(startLine, startCol),
			}, nil
		default:
			return Lexeme{Type: LEX_EOF}, fmt.Errorf("%s: unexpected character %q", l.loc(startLine, startCol), r)
		}
	}
}

// lexIdent reads an identifier or keyword
func (l *Lexer) lexIdent(startLine, startCol int) (Lexeme, error) {
	var sb strings.Builder

	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Lexeme{}, err
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			l.unreadRune()
			break
		}

		sb.WriteRune(r)
	}

	ident := sb.String()
	typ := LEX_IDENT
	if keywords[ident] {
		typ = LEX_KEYWORD
	}
	return Lexeme{
		Type: typ,
		Str:  ident,
		Loc:  l.loc(startLine, startCol),
	}, nil
}

// lexNumber reads a decimal, hexadecimal or float literal. The text is
// returned as written; types.ParseScalar gives it a value.
func (l *Lexer) lexNumber(startLine, startCol int) (Lexeme, error) {
	var sb strings.Builder
	loc := l.loc(startLine, startCol)

	r, _, err := l.readRune()
	if err != nil {
		return Lexeme{}, err
	}
	if r == '-' {
		sb.WriteRune(r)
		next, err := l.peekRune()
		if err != nil {
			return Lexeme{}, err
		}
		if !unicode.IsDigit(next) && next != '.' {
			return Lexeme{}, fmt.Errorf("%s: expected a number after '-'", loc)
		}
		r, _, _ = l.readRune()
	}
	sb.WriteRune(r)

	if r == '0' {
		next, err := l.peekRune()
		if err != nil {
			return Lexeme{}, err
		}
		if next == 'x' || next == 'X' {
			l.readRune()
			sb.WriteRune(next)
			return l.lexHexNumber(&sb, loc)
		}
	}

	seenDot := r == '.'
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Lexeme{}, err
		}

		if r == '.' && !seenDot {
			seenDot = true
			sb.WriteRune(r)
			continue
		}

		// "f" suffix ends a float literal
		if (r == 'f' || r == 'F') && seenDot {
			sb.WriteRune(r)
			break
		}

		if !unicode.IsDigit(r) {
			l.unreadRune()
			break
		}

		sb.WriteRune(r)
	}

	if err := l.checkBoundary(loc); err != nil {
		return Lexeme{}, err
	}
	return Lexeme{Type: LEX_NUMBER, Str: sb.String(), Loc: loc}, nil
}

// lexHexNumber reads the digits of a hexadecimal literal
func (l *Lexer) lexHexNumber(sb *strings.Builder, loc Location) (Lexeme, error) {
	digits := 0
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Lexeme{}, err
		}

		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			l.unreadRune()
			break
		}

		sb.WriteRune(r)
		digits++
	}

	if digits == 0 {
		return Lexeme{}, fmt.Errorf("%s: hexadecimal literal has no digits", loc)
	}
	if err := l.checkBoundary(loc); err != nil {
		return Lexeme{}, err
	}
	return Lexeme{Type: LEX_NUMBER, Str: sb.String(), Loc: loc}, nil
}

// checkBoundary rejects a number running straight into an identifier or
// another dot, as in "12ab" or "1.2.3".
func (l *Lexer) checkBoundary(loc Location) error {
	next, err := l.peekRune()
	if err != nil {
		return err
	}
	if unicode.IsLetter(next) || next == '_' || next == '.' {
		return fmt.Errorf("%s: malformed number", loc)
	}
	return nil
}
