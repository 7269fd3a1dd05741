package annotation

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/sirkon/checkverify/internal/failure"
)

type state int

const (
	stateScanning state = iota
	stateOffset
	stateAttributes
	stateMessage
	statePattern
	stateEffort
	stateDone
)

func (s state) String() string {
	switch s {
	case stateOffset:
		return "line offset"
	case stateAttributes:
		return "attributes"
	case stateMessage, statePattern:
		return "message"
	case stateEffort:
		return "effort"
	default:
		return "annotation"
	}
}

// machine parses what follows a marker. Components must appear in the order
// offset, attributes, message, effort, each of them at most once.
type machine struct {
	file  string
	src   string
	pos   int
	state state
	last  state
	decl  Declaration
}

func (m *machine) run() error {
	for m.state != stateDone {
		var err error
		switch m.state {
		case stateScanning:
			err = m.scanning()
		case stateOffset:
			err = m.offset()
		case stateAttributes:
			err = m.attributes()
		case stateMessage, statePattern:
			err = m.message()
		case stateEffort:
			err = m.effort()
		}
		if err != nil {
			return err
		}
	}

	return m.validate()
}

func (m *machine) scanning() error {
	m.skipSpaces()
	if m.eof() {
		m.state = stateDone
		return nil
	}

	rest := m.src[m.pos:]
	var next state
	switch {
	case rest[0] == '@':
		next = stateOffset
	case strings.HasPrefix(rest, "[["):
		next = stateAttributes
	case strings.HasPrefix(rest, "{{"):
		next = stateMessage
		// Edit replacements are literal text.
		body, ok := m.payload()
		if ok && m.decl.Kind != KindEdit && len(body) >= 2 && body[0] == '/' && body[len(body)-1] == '/' {
			next = statePattern
		}
	case rest[0] == ';':
		next = stateEffort
	default:
		return m.errorf("unexpected text %q", rest)
	}

	// Patterns and literals share the same slot.
	slot := next
	if slot == statePattern {
		slot = stateMessage
	}
	if slot <= m.last {
		return m.errorf("unexpected %s at %q", next, rest)
	}
	if err := m.allowed(next); err != nil {
		return err
	}

	m.last = slot
	m.state = next
	return nil
}

func (m *machine) allowed(next state) error {
	switch m.decl.Kind {
	case KindNoIssues:
		return m.errorf("%s takes no arguments", markerNoIssues)
	case KindSecondary, KindFix:
		if next == stateAttributes || next == stateEffort {
			return m.errorf("%s cannot have %s", m.decl.Kind, next)
		}
	case KindEdit:
		if next == stateEffort {
			return m.errorf("%s cannot have %s", m.decl.Kind, next)
		}
	}

	return nil
}

func (m *machine) offset() error {
	m.pos++ // @
	if m.decl.Kind == KindFix || m.decl.Kind == KindEdit {
		return m.fixID()
	}

	start := m.pos
	relative := false
	if !m.eof() && (m.src[m.pos] == '+' || m.src[m.pos] == '-') {
		relative = true
		m.pos++
	}
	for !m.eof() && isDigit(m.src[m.pos]) {
		m.pos++
	}
	if !m.eof() && (isWordChar(m.src[m.pos]) || m.src[m.pos] == '.') {
		return m.errorf("line offset must be an integer, got %q", m.word(start))
	}

	raw := m.src[start:m.pos]
	value, err := strconv.Atoi(raw)
	if err != nil {
		return m.errorf("line offset must be an integer, got %q", raw)
	}
	if m.decl.Kind == KindIssue && !relative {
		return m.errorf("use only '@+N' or '@-N' to shift issues")
	}

	m.decl.Offset = &LineRef{Value: value, Relative: relative}
	m.state = stateScanning
	return nil
}

// fixID reads the quick fix id that ends at a space or at the start of attributes or a message.
func (m *machine) fixID() error {
	start := m.pos
	for !m.eof() && m.src[m.pos] != ' ' && m.src[m.pos] != '\t' {
		rest := m.src[m.pos:]
		if strings.HasPrefix(rest, "[[") || strings.HasPrefix(rest, "{{") {
			break
		}
		m.pos++
	}

	id := m.src[start:m.pos]
	switch id {
	case "":
		return m.errorf("%s needs a quick fix id", m.decl.Kind)
	case NoQuickFixes:
		return m.errorf("%q is not a valid quick fix id", id)
	}

	m.decl.FixID = id
	m.state = stateScanning
	return nil
}

func (m *machine) attributes() error {
	body := m.src[m.pos+2:]
	end := strings.Index(body, "]]")
	if end < 0 {
		return m.errorf("unbalanced '[[' in attributes")
	}
	body = body[:end]
	m.pos += 2 + end + 2

	seen := map[string]struct{}{}
	for _, item := range strings.Split(body, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, value, ok := strings.Cut(item, "=")
		if !ok {
			return m.errorf("attribute %q must look like name=value", item)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		canon, ok := attributeAliases[name]
		if !ok {
			return m.errorf("unknown attribute %q", name)
		}
		if _, ok := kindAttributes[m.decl.Kind][canon]; !ok {
			return m.errorf("%s cannot have attribute %q", m.decl.Kind, canon)
		}
		if _, ok := seen[canon]; ok {
			return m.errorf("attribute %q is set multiple times", canon)
		}
		seen[canon] = struct{}{}

		if err := m.attribute(canon, value); err != nil {
			return err
		}
	}

	m.state = stateScanning
	return nil
}

var attributeAliases = map[string]string{
	"sc":          "startColumn",
	"startColumn": "startColumn",
	"ec":          "endColumn",
	"endColumn":   "endColumn",
	"el":          "endLine",
	"endLine":     "endLine",
	"sl":          "startLine",
	"startLine":   "startLine",
	"secondary":   "secondary",
	"effortToFix": "effortToFix",
	"quickfixes":  "quickfixes",
}

var kindAttributes = map[Kind]map[string]struct{}{
	KindIssue: {
		"startColumn": {},
		"endColumn":   {},
		"endLine":     {},
		"secondary":   {},
		"effortToFix": {},
		"quickfixes":  {},
	},
	KindEdit: {
		"startLine":   {},
		"startColumn": {},
		"endColumn":   {},
		"endLine":     {},
	},
}

func (m *machine) attribute(name, value string) error {
	switch name {
	case "startColumn", "endColumn":
		col, err := strconv.Atoi(value)
		if err != nil || col < 1 {
			return m.errorf("%s must be a positive integer, got %q", name, value)
		}
		if name == "startColumn" {
			m.decl.StartColumn = col
		} else {
			m.decl.EndColumn = col
		}

	case "endLine":
		ref, err := parseLineRef(value)
		if err != nil {
			return m.errorf("endLine must be an integer, got %q", value)
		}
		if ref.Relative && ref.Value < 0 {
			return m.errorf("endLine must be +N or an absolute line, got %q", value)
		}
		m.decl.EndLine = &ref

	case "startLine":
		ref, err := parseLineRef(value)
		if err != nil {
			return m.errorf("startLine must be an integer, got %q", value)
		}
		m.decl.StartLine = &ref

	case "secondary":
		// An empty list declares no secondary locations.
		if value == "" {
			break
		}
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			ref, err := parseLineRef(item)
			if err != nil {
				return m.errorf("secondary line must be an integer, got %q", item)
			}
			m.decl.Secondaries = append(m.decl.Secondaries, ref)
		}

	case "effortToFix":
		v, err := parseEffort(value)
		if err != nil {
			return m.errorf("effortToFix must be a finite number, got %q", value)
		}
		m.decl.Effort = &v

	case "quickfixes":
		if value == "" {
			return m.errorf("quickfixes needs ids, use %q to expect no quick fixes", NoQuickFixes)
		}
		for _, id := range strings.Split(value, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				return m.errorf("empty quick fix id in %q", value)
			}
			m.decl.QuickFixes = append(m.decl.QuickFixes, id)
		}
		if len(m.decl.QuickFixes) > 1 && slices.Contains(m.decl.QuickFixes, NoQuickFixes) {
			return m.errorf("%q cannot be combined with other quick fix ids", NoQuickFixes)
		}
	}

	return nil
}

func (m *machine) message() error {
	body, ok := m.payload()
	if !ok {
		return m.errorf("unbalanced '{{' in message")
	}
	m.pos += 2 + len(body) + 2

	if m.state == stateMessage {
		m.decl.Message = Literal(body)
		m.state = stateScanning
		return nil
	}

	msg, err := Pattern(body[1 : len(body)-1])
	if err != nil {
		return m.errorf("invalid message pattern %s: %s", body, err)
	}
	m.decl.Message = msg
	m.state = stateScanning
	return nil
}

// payload returns the text between "{{" at the current position and the last "}}" of the comment.
// The last one is taken so that messages can contain braces themselves.
func (m *machine) payload() (string, bool) {
	rest := m.src[m.pos+2:]
	end := strings.LastIndex(rest, "}}")
	if end < 0 {
		return "", false
	}
	// Effort goes after the message, so a "}}" after "; effort" belongs to garbage.
	body := rest[:end]
	if strings.Contains(body, "{{") {
		return "", false
	}

	return body, true
}

func (m *machine) effort() error {
	m.pos++ // ;
	m.skipSpaces()

	rest := m.src[m.pos:]
	if !strings.HasPrefix(rest, "effort") {
		return m.errorf("expected effort=N after ';', got %q", rest)
	}
	m.pos += len("effort")
	m.skipSpaces()
	if m.eof() || m.src[m.pos] != '=' {
		return m.errorf("expected '=' after effort")
	}
	m.pos++
	m.skipSpaces()

	start := m.pos
	for !m.eof() && m.src[m.pos] != ' ' && m.src[m.pos] != '\t' {
		m.pos++
	}
	raw := m.src[start:m.pos]
	v, err := parseEffort(raw)
	if err != nil {
		return m.errorf("effort must be a finite number, got %q", raw)
	}
	if m.decl.Effort != nil {
		return m.errorf("effort is set multiple times, use either effortToFix or '; effort=N'")
	}
	m.decl.Effort = &v

	m.skipSpaces()
	if !m.eof() {
		return m.errorf("unexpected text %q after effort", m.src[m.pos:])
	}

	m.state = stateDone
	return nil
}

func (m *machine) validate() error {
	switch m.decl.Kind {
	case KindSecondary:
		if m.decl.Offset == nil {
			return m.errorf("%s needs a line: use '@+N', '@-N' or '@N'", markerSecondary)
		}
	case KindFix:
		if m.decl.Message == nil {
			return m.errorf("%s@%s needs a message", markerFix, m.decl.FixID)
		}
	case KindEdit:
		if m.decl.StartColumn == 0 || m.decl.EndColumn == 0 {
			return m.errorf("%s@%s needs both sc and ec", markerEdit, m.decl.FixID)
		}
		if m.decl.Message == nil {
			return m.errorf("%s@%s needs a replacement, use {{}} to delete text", markerEdit, m.decl.FixID)
		}
	}
	if m.decl.Offset != nil && !m.decl.Offset.Relative && m.decl.Offset.Value < 1 {
		return m.errorf("line must be positive, got %d", m.decl.Offset.Value)
	}

	return nil
}

func (m *machine) skipSpaces() {
	for !m.eof() && (m.src[m.pos] == ' ' || m.src[m.pos] == '\t') {
		m.pos++
	}
}

func (m *machine) eof() bool {
	return m.pos >= len(m.src)
}

func (m *machine) word(start int) string {
	end := start
	for end < len(m.src) && m.src[end] != ' ' && m.src[end] != '\t' {
		end++
	}

	return m.src[start:end]
}

func (m *machine) errorf(format string, a ...any) error {
	return failure.New(failure.AnnotationSyntax, m.file, m.decl.Line, format, a...)
}

// parseEffort accepts finite numbers only.
func parseEffort(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}

	return v, nil
}

func parseLineRef(s string) (LineRef, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return LineRef{}, err
	}

	return LineRef{
		Value:    v,
		Relative: strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-"),
	}, nil
}
