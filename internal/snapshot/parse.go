package snapshot

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tablepick/reco/pkg/models"
)

// Nested snapshot columns arrive in one of two textual encodings: a JSON
// array, or the Python list-literal form the upstream CSV exporter wrote
// (single-quoted dicts). Both decode transparently; anything unparsable
// degrades to an empty list so one bad row never aborts a load.

// Record key aliases: the crawler wrote Korean keys, the database export
// writes English ones.
var (
	tagKeys     = []string{"tags", "태그"}
	bodyKeys    = []string{"body", "content", "게시글"}
	imageKeys   = []string{"images", "이미지"}
	createdKeys = []string{"created_at", "작성시간"}
	menuKeys    = []string{"name", "메뉴명"}
	priceKeys   = []string{"price", "가격"}
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// decodeRecords parses a serialized list of key-value records. It returns
// nil when the field is empty or unparsable.
func decodeRecords(raw string) []map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "nan" {
		return nil
	}

	var viaJSON []map[string]any
	if err := json.Unmarshal([]byte(raw), &viaJSON); err == nil {
		return viaJSON
	}

	value, err := parsePythonLiteral(raw)
	if err != nil {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	records := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if record, ok := item.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}

// decodeStringList parses a serialized list of strings, accepting JSON,
// Python list-literal, or a bare comma-separated form.
func decodeStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "nan" {
		return nil
	}

	var viaJSON []string
	if err := json.Unmarshal([]byte(raw), &viaJSON); err == nil {
		return viaJSON
	}

	if value, err := parsePythonLiteral(raw); err == nil {
		if list, ok := value.([]any); ok {
			out := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			return out
		}
	}

	if !strings.HasPrefix(raw, "[") {
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}

// reviewsFromRaw builds the review list for one restaurant row.
func reviewsFromRaw(raw string) []models.Review {
	records := decodeRecords(raw)
	if len(records) == 0 {
		return nil
	}
	reviews := make([]models.Review, 0, len(records))
	for _, record := range records {
		reviews = append(reviews, models.Review{
			Tags:      stringList(record, tagKeys),
			Body:      stringField(record, bodyKeys),
			Images:    stringList(record, imageKeys),
			CreatedAt: timeField(record, createdKeys),
		})
	}
	return reviews
}

// menusFromRaw builds the menu list for one restaurant row.
func menusFromRaw(raw string) []models.MenuItem {
	records := decodeRecords(raw)
	if len(records) == 0 {
		return nil
	}
	menus := make([]models.MenuItem, 0, len(records))
	for _, record := range records {
		name := stringField(record, menuKeys)
		if name == "" {
			continue
		}
		menus = append(menus, models.MenuItem{
			Name:  name,
			Price: stringField(record, priceKeys),
		})
	}
	return menus
}

func stringField(record map[string]any, keys []string) string {
	for _, key := range keys {
		if value, ok := record[key]; ok {
			if s, ok := value.(string); ok {
				return s
			}
		}
	}
	return ""
}

func stringList(record map[string]any, keys []string) []string {
	for _, key := range keys {
		value, ok := record[key]
		if !ok {
			continue
		}
		list, ok := value.([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func timeField(record map[string]any, keys []string) *time.Time {
	raw := stringField(record, keys)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}

// parsePythonLiteral evaluates the subset of Python literal syntax the
// exporter produces: lists, dicts, quoted strings, numbers, True, False,
// None. It is intentionally strict about anything else.
func parsePythonLiteral(s string) (any, error) {
	p := &literalParser{input: s}
	p.skipSpace()
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, &literalError{p.pos, "trailing data"}
	}
	return value, nil
}

type literalParser struct {
	input string
	pos   int
}

type literalError struct {
	pos int
	msg string
}

func (e *literalError) Error() string {
	return "literal parse error at " + strconv.Itoa(e.pos) + ": " + e.msg
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func (p *literalParser) parseValue() (any, error) {
	if p.pos >= len(p.input) {
		return nil, &literalError{p.pos, "unexpected end of input"}
	}
	switch c := p.input[p.pos]; {
	case c == '[':
		return p.parseList()
	case c == '{':
		return p.parseDict()
	case c == '\'' || c == '"':
		return p.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case strings.HasPrefix(p.input[p.pos:], "True"):
		p.pos += 4
		return true, nil
	case strings.HasPrefix(p.input[p.pos:], "False"):
		p.pos += 5
		return false, nil
	case strings.HasPrefix(p.input[p.pos:], "None"):
		p.pos += 4
		return nil, nil
	default:
		return nil, &literalError{p.pos, "unexpected character"}
	}
}

func (p *literalParser) parseList() (any, error) {
	p.pos++ // consume '['
	var list []any
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, &literalError{p.pos, "unterminated list"}
		}
		if p.input[p.pos] == ']' {
			p.pos++
			return list, nil
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, value)
		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == ',' {
			p.pos++
		}
	}
}

func (p *literalParser) parseDict() (any, error) {
	p.pos++ // consume '{'
	dict := make(map[string]any)
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, &literalError{p.pos, "unterminated dict"}
		}
		if p.input[p.pos] == '}' {
			p.pos++
			return dict, nil
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ':' {
			return nil, &literalError{p.pos, "expected ':' after dict key"}
		}
		p.pos++
		p.skipSpace()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		dict[key] = value
		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == ',' {
			p.pos++
		}
	}
}

func (p *literalParser) parseString() (string, error) {
	if p.pos >= len(p.input) {
		return "", &literalError{p.pos, "expected string"}
	}
	quote := p.input[p.pos]
	if quote != '\'' && quote != '"' {
		return "", &literalError{p.pos, "expected string quote"}
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.input) {
				return "", &literalError{p.pos, "unterminated escape"}
			}
			switch esc := p.input[p.pos]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(esc)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", &literalError{p.pos, "unterminated string"}
}

func (p *literalParser) parseNumber() (any, error) {
	start := p.pos
	if p.input[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return nil, &literalError{start, "invalid number"}
	}
	return value, nil
}
