// Package entity describes one business record type once (its table, list
// columns, form fields and save hooks) and derives the generic CRUD surface
// from that description.
package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"factory-admin/internal/costing"
	"factory-admin/internal/store"
)

var ErrMissingField = errors.New("missing required field")

// maxExactInt bounds integer fields; larger values decode as 0.
const maxExactInt = 1 << 53

type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindEmail    Kind = "email"
	KindDate     Kind = "date"
	KindInt      Kind = "int"
	KindNumber   Kind = "number"
	KindSelect   Kind = "select"
)

// Column is one list column. Key is the camelCase display key.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Field is one form input. Key is the camelCase form key; the stored column
// is SnakeCase(Key).
type Field struct {
	Key      string
	Label    string
	Kind     Kind
	Required bool
	Options  []string
	Default  func() string
}

func (f Field) Column() string { return SnakeCase(f.Key) }

func (f Field) value(raw string) any {
	switch f.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			fl := costing.ParseQuantity(raw)
			if math.Abs(fl) > maxExactInt {
				return 0
			}
			return int(fl)
		}
		return n
	case KindNumber:
		return costing.ParseQuantity(raw)
	default:
		return raw
	}
}

// Draft is an unsaved form keyed by Field.Key.
type Draft map[string]string

func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Meta is the type-independent part of a definition.
type Meta struct {
	Name     string // singular, "Raw Material"
	Plural   string // "Raw Materials"
	Slug     string // route segment, "raw-materials"
	Table    string // backing table, "raw_materials"
	Path     string // page route, defaults to "/" + Slug
	Subtitle string
	Order    string // stable list order, "id asc"
	Columns  []Column
	Fields   []Field
}

func (m Meta) Route() string {
	if m.Path != "" {
		return m.Path
	}
	return "/" + m.Slug
}

// Noun is the lower-case singular used in notifications.
func (m Meta) Noun() string { return strings.ToLower(m.Name) }

func (m Meta) Field(key string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Key == key || f.Column() == key {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks that every required field of draft is non-empty.
func (m Meta) Validate(draft Draft) error {
	var missing []string
	for _, f := range m.Fields {
		if f.Required && strings.TrimSpace(draft[f.Key]) == "" {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// NewDraft returns an empty form seeded with field defaults.
func (m Meta) NewDraft() Draft {
	d := make(Draft, len(m.Fields))
	for _, f := range m.Fields {
		if f.Default != nil {
			d[f.Key] = f.Default()
		} else {
			d[f.Key] = ""
		}
	}
	return d
}

// DraftFromMap reads a decoded request body. Keys may be camelCase or
// snake_case; unknown keys are ignored.
func (m Meta) DraftFromMap(body map[string]any) Draft {
	d := make(Draft, len(m.Fields))
	for k, v := range body {
		f, ok := m.Field(k)
		if !ok {
			continue
		}
		d[f.Key] = stringify(v)
	}
	return d
}

// Definition binds Meta to the model type T.
type Definition[T store.Record] struct {
	Meta
	// Subject names a row in notifications, e.g. the department name.
	Subject func(T) string
	// Prepare runs on every decoded draft before it is written.
	Prepare func(*T)
}

// Decode converts draft into a row. Numeric fields that do not parse
// become 0.
func (d *Definition[T]) Decode(draft Draft) (T, error) {
	var row T
	values := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		values[f.Column()] = f.value(strings.TrimSpace(draft[f.Key]))
	}
	buf, err := json.Marshal(values)
	if err != nil {
		return row, fmt.Errorf("encode %s draft: %w", d.Noun(), err)
	}
	if err := json.Unmarshal(buf, &row); err != nil {
		return row, fmt.Errorf("decode %s draft: %w", d.Noun(), err)
	}
	if d.Prepare != nil {
		d.Prepare(&row)
	}
	return row, nil
}

// DraftOf returns the edit form for an existing row.
func (d *Definition[T]) DraftOf(row T) Draft {
	values := toMap(row)
	draft := make(Draft, len(d.Fields))
	for _, f := range d.Fields {
		draft[f.Key] = stringify(values[f.Column()])
	}
	return draft
}

// Row is a rendered list row: the record id and one string per column.
type Row struct {
	ID    uint
	Cells []string
}

func (d *Definition[T]) Row(row T) Row {
	values := toMap(row)
	cells := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		cells[i] = stringify(values[SnakeCase(c.Key)])
	}
	return Row{ID: row.Key(), Cells: cells}
}

func (d *Definition[T]) Rows(rows []T) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = d.Row(r)
	}
	return out
}

// Search keeps the rows where any column contains query, ignoring case.
// An empty query keeps everything.
func (d *Definition[T]) Search(rows []T, query string) []T {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if Matches(d.Row(r).Cells, query) {
			out = append(out, r)
		}
	}
	return out
}

func (d *Definition[T]) SubjectOf(row T) string {
	if d.Subject == nil {
		return d.Name
	}
	return d.Subject(row)
}

// Matches reports whether any cell contains query, ignoring case.
func Matches(cells []string, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, c := range cells {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	return false
}

// FilterRows is Matches applied to rendered rows.
func FilterRows(rows []Row, query string) []Row {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if Matches(r.Cells, query) {
			out = append(out, r)
		}
	}
	return out
}

// SnakeCase maps a camelCase key to its column name: employeeCount ->
// employee_count. Keys that are already snake_case are returned unchanged.
func SnakeCase(key string) string {
	runes := []rune(key)
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Currency prefixes a bare amount with "$". Empty and already prefixed
// values are returned as-is.
func Currency(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "$") {
		return s
	}
	return "$" + s
}

func toMap(v any) map[string]any {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil
	}
	return m
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
