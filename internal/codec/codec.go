// Package codec maps categorical listing values to the integer codes the
// corpus and the price model work with.
//
// Codes follow label-encoder semantics: the distinct values of a field are
// sorted and each value is encoded as its index. A codec is immutable once
// built and safe for concurrent use.
package codec

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

// Field names a categorical column.
type Field string

const (
	FieldRegion   Field = "region"
	FieldLocality Field = "locality"
	FieldType     Field = "type"
	FieldStatus   Field = "status"
	FieldAge      Field = "age"
)

// Fields lists every encoded column in corpus order.
var Fields = []Field{FieldRegion, FieldLocality, FieldType, FieldStatus, FieldAge}

// Codec is the bijection between the values of one field and their codes.
type Codec struct {
	field   Field
	classes []string
	index   map[string]int
}

// New builds a codec from every value seen for field. Duplicates are allowed.
func New(field Field, values []string) *Codec {
	classes := lo.Uniq(values)
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, v := range classes {
		index[v] = i
	}

	return &Codec{field: field, classes: classes, index: index}
}

// Field returns the column this codec encodes.
func (c *Codec) Field() Field {
	return c.field
}

// Encode returns the code for value.
func (c *Codec) Encode(value string) (int, error) {
	code, ok := c.index[value]
	if !ok {
		return 0, fmt.Errorf("%w: %s %q", models.ErrUnknownCategory, c.field, value)
	}
	return code, nil
}

// Decode returns the value for code.
func (c *Codec) Decode(code int) (string, error) {
	if code < 0 || code >= len(c.classes) {
		return "", fmt.Errorf("%w: %s code %d out of range [0,%d)", models.ErrInvalidCode, c.field, code, len(c.classes))
	}
	return c.classes[code], nil
}

// Contains reports whether value is part of the vocabulary.
func (c *Codec) Contains(value string) bool {
	_, ok := c.index[value]
	return ok
}

// Classes returns the vocabulary in code order.
func (c *Codec) Classes() []string {
	out := make([]string, len(c.classes))
	copy(out, c.classes)
	return out
}

// Len returns the vocabulary size.
func (c *Codec) Len() int {
	return len(c.classes)
}

// Set holds one independent codec per field.
type Set struct {
	codecs map[Field]*Codec
}

// NewSet groups codecs by their field. A later codec for the same field
// replaces an earlier one.
func NewSet(codecs ...*Codec) *Set {
	s := &Set{codecs: make(map[Field]*Codec, len(codecs))}
	for _, c := range codecs {
		s.codecs[c.field] = c
	}
	return s
}

// Codec returns the codec for field.
func (s *Set) Codec(field Field) (*Codec, error) {
	c, ok := s.codecs[field]
	if !ok {
		return nil, fmt.Errorf("no codec registered for field %q", field)
	}
	return c, nil
}

// Encode encodes value with the codec for field.
func (s *Set) Encode(field Field, value string) (int, error) {
	c, err := s.Codec(field)
	if err != nil {
		return 0, err
	}
	return c.Encode(value)
}

// Decode decodes code with the codec for field.
func (s *Set) Decode(field Field, code int) (string, error) {
	c, err := s.Codec(field)
	if err != nil {
		return "", err
	}
	return c.Decode(code)
}
