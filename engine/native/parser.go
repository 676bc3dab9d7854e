package native

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arloliu/dirfile/endian"
	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
	"github.com/arloliu/dirfile/internal/collision"
	"github.com/arloliu/dirfile/internal/hash"
)

// FormatFileName is the name of the metadata file at the root of a dirfile.
const FormatFileName = "format"

// fragmentState holds the directive state in effect while parsing one
// format file. Included fragments start from a copy of their parent's state
// and their changes do not leak back.
type fragmentState struct {
	dir         string
	engine      endian.EndianEngine
	compression format.CompressionType
	depth       int
}

type parser struct {
	logger    zerolog.Logger
	maxDepth  int
	tracker   *collision.Tracker
	entries   []*entry
	index     map[uint64][]*entry
	reference string
}

func newParser(logger zerolog.Logger, maxDepth int) *parser {
	return &parser{
		logger:   logger,
		maxDepth: maxDepth,
		tracker:  collision.NewTracker(),
		index:    make(map[uint64][]*entry),
	}
}

// parseFile parses the format file at path and every fragment it includes.
func (p *parser) parseFile(path string, state fragmentState) error {
	if state.depth > p.maxDepth {
		return fmt.Errorf("%w: %s", errs.ErrIncludeDepth, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open format file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		tokens, err := tokenize(scanner.Text())
		if err != nil {
			return syntaxError(path, lineNo, err.Error())
		}
		if len(tokens) == 0 {
			continue
		}

		if strings.HasPrefix(tokens[0], "/") {
			err = p.directive(path, lineNo, tokens, &state)
		} else {
			err = p.field(path, lineNo, tokens, state)
		}
		if err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read format file %s: %w", path, err)
	}

	return nil
}

func (p *parser) directive(path string, lineNo int, tokens []string, state *fragmentState) error {
	name := strings.ToUpper(tokens[0])

	switch name {
	case "/ENDIAN":
		if len(tokens) < 2 {
			return syntaxError(path, lineNo, "/ENDIAN requires an argument")
		}
		engine, ok := endian.Parse(tokens[1])
		if !ok {
			return syntaxError(path, lineNo, fmt.Sprintf("unknown byte order %q", tokens[1]))
		}
		state.engine = engine

	case "/ENCODING":
		if len(tokens) < 2 {
			return syntaxError(path, lineNo, "/ENCODING requires an argument")
		}
		compression, ok := format.ParseCompression(tokens[1])
		if !ok {
			return syntaxError(path, lineNo, fmt.Sprintf("unsupported encoding %q", tokens[1]))
		}
		state.compression = compression

	case "/REFERENCE":
		if len(tokens) < 2 {
			return syntaxError(path, lineNo, "/REFERENCE requires a field name")
		}
		p.reference = tokens[1]

	case "/INCLUDE":
		if len(tokens) < 2 {
			return syntaxError(path, lineNo, "/INCLUDE requires a file name")
		}
		included := tokens[1]
		if !filepath.IsAbs(included) {
			included = filepath.Join(state.dir, included)
		}
		child := *state
		child.dir = filepath.Dir(included)
		child.depth++

		return p.parseFile(included, child)

	default:
		p.logger.Debug().
			Str("directive", tokens[0]).
			Str("file", path).
			Int("line", lineNo).
			Msg("ignoring directive")
	}

	return nil
}

func (p *parser) field(path string, lineNo int, tokens []string, state fragmentState) error {
	if len(tokens) < 2 {
		return syntaxError(path, lineNo, fmt.Sprintf("field %q has no type", tokens[0]))
	}

	if !validFieldName(tokens[0]) {
		return fmt.Errorf("%s:%d: %w: %q", path, lineNo, errs.ErrInvalidFieldName, tokens[0])
	}

	e := &entry{
		name:    tokens[0],
		keyword: strings.ToUpper(tokens[1]),
	}

	switch e.keyword {
	case "RAW":
		if err := parseRaw(e, tokens); err != nil {
			return syntaxError(path, lineNo, err.Error())
		}
		e.dir = state.dir
		e.engine = state.engine
		e.compression = state.compression

	case "CONST":
		if len(tokens) < 4 {
			return syntaxError(path, lineNo, "CONST requires a type and a value")
		}
		typ, ok := format.ParseElementType(tokens[2])
		if !ok || typ == format.TypeString {
			return syntaxError(path, lineNo, fmt.Sprintf("invalid CONST type %q", tokens[2]))
		}
		e.kind = kindConst
		e.typ = typ
		e.value = tokens[3]

	case "STRING":
		if len(tokens) < 3 {
			return syntaxError(path, lineNo, "STRING requires a value")
		}
		e.kind = kindString
		e.typ = format.TypeString
		e.value = tokens[2]

	default:
		// Derived and array fields are declared but carry no storable type
		// at this layer.
		e.kind = kindDerived
		e.typ = format.TypeNull
	}

	id := hash.ID(e.name)
	if err := p.tracker.Track(e.name, id); err != nil {
		return fmt.Errorf("%s:%d: %w", path, lineNo, err)
	}

	p.entries = append(p.entries, e)
	p.index[id] = append(p.index[id], e)

	return nil
}

// validFieldName rejects names that would resolve to a raw file outside the
// fragment directory.
func validFieldName(name string) bool {
	return !strings.ContainsAny(name, "/\\") && !strings.HasPrefix(name, "..")
}

func parseRaw(e *entry, tokens []string) error {
	if len(tokens) < 4 {
		return fmt.Errorf("RAW field %q requires a type and samples-per-frame", e.name)
	}

	typ, ok := format.ParseElementType(tokens[2])
	if !ok {
		return fmt.Errorf("unknown RAW type %q", tokens[2])
	}

	spf, err := strconv.ParseUint(tokens[3], 10, 32)
	if err != nil || spf == 0 {
		return fmt.Errorf("invalid samples-per-frame %q", tokens[3])
	}

	e.kind = kindRaw
	e.typ = typ
	e.spf = uint(spf)
	e.width = typ.Size()

	if typ == format.TypeString {
		if len(tokens) < 5 {
			return fmt.Errorf("RAW STRING field %q requires a cell width", e.name)
		}
		width, err := strconv.Atoi(tokens[4])
		if err != nil || width <= 0 {
			return fmt.Errorf("invalid cell width %q", tokens[4])
		}
		e.width = width
	}

	return nil
}

// referenceEntry resolves the field that defines the frame count.
func (p *parser) referenceEntry() (*entry, error) {
	if p.reference == "" {
		for _, e := range p.entries {
			if e.kind == kindRaw {
				return e, nil
			}
		}

		return nil, nil
	}

	id := hash.ID(p.reference)
	if !p.tracker.Contains(p.reference, id) {
		return nil, fmt.Errorf("%w: reference field %q is not defined", errs.ErrFormatSyntax, p.reference)
	}

	for _, e := range p.index[id] {
		if e.name != p.reference {
			continue
		}
		if e.kind != kindRaw {
			return nil, fmt.Errorf("%w: reference field %q is not RAW", errs.ErrFormatSyntax, p.reference)
		}

		return e, nil
	}

	return nil, fmt.Errorf("%w: reference field %q is not defined", errs.ErrFormatSyntax, p.reference)
}

func syntaxError(path string, lineNo int, msg string) error {
	return fmt.Errorf("%w: %s:%d: %s", errs.ErrFormatSyntax, path, lineNo, msg)
}

// tokenize splits a format file line into tokens.
//
// Tokens are separated by whitespace. A '#' outside quotes starts a comment.
// Double quotes group a token that may contain whitespace; within quotes a
// backslash escapes the next character.
func tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		inToken bool
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			inToken = true
		case inQuote:
			cur.WriteRune(r)
		case r == '#':
			if inToken {
				tokens = append(tokens, cur.String())
			}

			return tokens, nil
		case r == ' ' || r == '\t' || r == '\r':
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}

	if inQuote || escaped {
		return nil, fmt.Errorf("unterminated quoted token")
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}

	return tokens, nil
}
