package cif

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Parser reads a CIF token stream and builds a File. It follows the
// teacher's io/pdbx/cif.Parser shape (buffered reader, line tracking,
// current-block-name bookkeeping, a small dispatch table keyed on the
// next few bytes of input) narrowed to the token set mmCIF structure
// files actually use: data_ headers, loop_ categories, and tag/value
// pairs. Save frames (mmCIF dictionaries only, never structure files)
// are skipped rather than modeled.
type Parser struct {
	r         *bufio.Reader
	line      int
	blockName string
	file      File
	lastWord  string
}

// NewParser returns a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: bufio.NewReader(r), line: 1, file: newFile()}
}

// Parse consumes the entire input and returns the resulting File, or a
// SyntaxError at the offending line.
func (p *Parser) Parse() (File, error) {
	for {
		if err := p.skipWhitespaceAndComments(); err != nil {
			if err == io.EOF {
				return p.file, nil
			}
			return p.file, err
		}
		b, err := p.r.Peek(1)
		if err == io.EOF {
			return p.file, nil
		}
		if err != nil {
			return p.file, err
		}

		switch {
		case hasPrefixFold(p.r, "data_"):
			if err := p.handleDataBlockHeader(); err != nil {
				return p.file, err
			}
		case hasPrefixFold(p.r, "save_"):
			if err := p.skipSaveFrame(); err != nil {
				return p.file, err
			}
		case hasPrefixFold(p.r, "loop_"):
			if err := p.handleLoop(); err != nil {
				return p.file, err
			}
		case b[0] == '_':
			if err := p.handleTagValue(); err != nil {
				return p.file, err
			}
		default:
			return p.file, p.syntaxError("unexpected token")
		}
	}
}

func (p *Parser) handleDataBlockHeader() error {
	p.readWord() // "data_" + name, consumed together
	name := p.lastWord[len("data_"):]
	if name == "" {
		return p.syntaxError("data block header must have a name")
	}
	p.blockName = name
	if _, ok := p.file.Blocks[name]; !ok {
		p.file.Blocks[name] = newBlock(name)
	}
	return nil
}

func (p *Parser) skipSaveFrame() error {
	p.readWord()
	for {
		if err := p.skipWhitespaceAndComments(); err != nil {
			return p.syntaxError("save frame must be terminated before EOF")
		}
		if hasPrefixFold(p.r, "save_") {
			word := p.peekWord()
			if word == "save_" { // bare terminator
				p.readWord()
				return nil
			}
		}
		if hasPrefixFold(p.r, "data_") {
			return p.syntaxError("save frame must be terminated before another data block")
		}
		// consume one token (tag, loop_, or value) and move on.
		if _, err := p.readToken(); err != nil {
			return err
		}
	}
}

func (p *Parser) handleTagValue() error {
	if p.blockName == "" {
		return p.syntaxError("tag:value must be inside a data block")
	}
	tag, err := p.readTag()
	if err != nil {
		return err
	}
	if err := p.skipWhitespaceAndComments(); err != nil {
		return p.syntaxError("tag missing a value")
	}
	value, err := p.readValue()
	if err != nil {
		return err
	}
	blk := p.file.Blocks[p.blockName]
	blk.DataItems[tag] = value
	p.file.Blocks[p.blockName] = blk
	return nil
}

func (p *Parser) handleLoop() error {
	if p.blockName == "" {
		return p.syntaxError("loop_ must be inside a data block")
	}
	p.readWord() // "loop_"

	var tags []string
	for {
		if err := p.skipWhitespaceAndComments(); err != nil {
			return p.syntaxError("loop_ must not be empty")
		}
		peek, _ := p.r.Peek(1)
		if len(peek) == 0 || peek[0] != '_' {
			break
		}
		tag, err := p.readTag()
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return p.syntaxError("loop_ must declare at least one tag")
	}

	var values []any
	for {
		if err := p.skipWhitespaceAndComments(); err != nil {
			break
		}
		if p.atReservedWord() {
			break
		}
		v, err := p.readValue()
		if err != nil {
			break
		}
		values = append(values, v)
	}

	if len(values)%len(tags) != 0 {
		return p.syntaxError("number of loop_ values must be a multiple of the number of tags")
	}

	blk := p.file.Blocks[p.blockName]
	rows := len(values) / len(tags)
	for ti, tag := range tags {
		col := make([]any, rows)
		for row := 0; row < rows; row++ {
			col[row] = values[row*len(tags)+ti]
		}
		blk.DataItems[tag] = col
	}
	p.file.Blocks[p.blockName] = blk
	return nil
}

// --- low-level token reading, condensed from the teacher's
// readValue/readUnquotedValue/readQuotedString/readTextField/readTag.

func (p *Parser) atReservedWord() bool {
	return hasPrefixFold(p.r, "loop_") || hasPrefixFold(p.r, "data_") || hasPrefixFold(p.r, "save_") || hasPrefixFold(p.r, "stop_") || hasPrefixFold(p.r, "global_")
}

func (p *Parser) readTag() (string, error) {
	word := p.readWord()
	if !strings.HasPrefix(word, "_") {
		return "", p.syntaxError("expected a tag starting with '_'")
	}
	return word, nil
}

func (p *Parser) readValue() (any, error) {
	peek, err := p.r.Peek(1)
	if err != nil {
		return nil, p.syntaxError("expected a value")
	}
	switch peek[0] {
	case ';':
		return p.readTextField()
	case '\'', '"':
		return p.readQuotedString(peek[0])
	default:
		return p.readUnquotedValue()
	}
}

func (p *Parser) readTextField() (string, error) {
	p.r.ReadByte() // leading ';'
	var sb strings.Builder
	for {
		line, err := p.r.ReadString('\n')
		if strings.HasPrefix(line, ";") {
			return strings.TrimRight(sb.String(), "\n"), nil
		}
		sb.WriteString(line)
		p.line++
		if err != nil {
			if err == io.EOF {
				return sb.String(), nil
			}
			return "", err
		}
	}
}

func (p *Parser) readQuotedString(quote byte) (string, error) {
	p.r.ReadByte()
	var sb strings.Builder
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			return "", p.syntaxError("unterminated quoted string")
		}
		if b == quote {
			next, err := p.r.Peek(1)
			if err != nil || isWhitespace(next[0]) {
				return sb.String(), nil
			}
		}
		sb.WriteByte(b)
	}
}

func (p *Parser) readUnquotedValue() (any, error) {
	word := p.readWord()
	switch word {
	case string(Inapplicable):
		return Inapplicable, nil
	case string(Unknown):
		return Unknown, nil
	}
	return parseNumeric(word), nil
}

// readWord reads up to the next whitespace run, tracking newlines, and
// records it in lastWord for callers that need the raw token (data_
// headers embed their name in the same word).
func (p *Parser) readWord() string {
	var sb strings.Builder
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			break
		}
		if isWhitespace(b) {
			if b == '\n' {
				p.line++
			}
			break
		}
		sb.WriteByte(b)
	}
	p.lastWord = sb.String()
	return p.lastWord
}

func (p *Parser) peekWord() string {
	peek, _ := p.r.Peek(64)
	s := string(peek)
	if idx := strings.IndexAny(s, " \t\r\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func (p *Parser) readToken() (string, error) {
	if err := p.skipWhitespaceAndComments(); err != nil {
		return "", err
	}
	return p.readWord(), nil
}

func (p *Parser) skipWhitespaceAndComments() error {
	for {
		b, err := p.r.Peek(1)
		if err != nil {
			return io.EOF
		}
		switch {
		case isWhitespace(b[0]):
			c, _ := p.r.ReadByte()
			if c == '\n' {
				p.line++
			}
		case b[0] == '#':
			if _, err := p.r.ReadString('\n'); err != nil {
				return io.EOF
			}
			p.line++
		default:
			return nil
		}
	}
}

func (p *Parser) syntaxError(msg string) error {
	return SyntaxError{Line: p.line, Msg: msg}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// hasPrefixFold reports whether the reader's upcoming bytes are the
// given ASCII-lowercase keyword, case-insensitively, without consuming
// them.
func hasPrefixFold(r *bufio.Reader, keyword string) bool {
	peek, err := r.Peek(len(keyword))
	if err != nil {
		return false
	}
	return strings.EqualFold(string(peek), keyword)
}

func parseNumeric(word string) any {
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return f
	}
	return word
}
