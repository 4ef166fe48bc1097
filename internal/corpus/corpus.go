// Package corpus holds the property snapshot used for recommendations.
//
// The snapshot is loaded once and never written afterwards: every query
// returns a new View and leaves the underlying records untouched, so a Corpus
// can be shared by any number of goroutines without locking.
package corpus

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/samber/lo"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/codec"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

// Corpus is an ordered, encoded property snapshot with its codecs.
type Corpus struct {
	codecs     *codec.Set
	properties []models.Property
}

// New wraps already encoded properties. The slice is copied.
func New(codecs *codec.Set, properties []models.Property) *Corpus {
	props := make([]models.Property, len(properties))
	copy(props, properties)
	return &Corpus{codecs: codecs, properties: props}
}

// FromListings builds the codecs from the listings and encodes them.
func FromListings(listings []models.Listing) (*Corpus, error) {
	codecs := codec.NewSet(
		codec.New(codec.FieldRegion, lo.Map(listings, func(l models.Listing, _ int) string { return l.Region })),
		codec.New(codec.FieldLocality, lo.Map(listings, func(l models.Listing, _ int) string { return l.Locality })),
		codec.New(codec.FieldType, lo.Map(listings, func(l models.Listing, _ int) string { return l.Type })),
		codec.New(codec.FieldStatus, lo.Map(listings, func(l models.Listing, _ int) string { return l.Status })),
		codec.New(codec.FieldAge, lo.Map(listings, func(l models.Listing, _ int) string { return l.Age })),
	)

	properties := make([]models.Property, 0, len(listings))
	for i, l := range listings {
		p, err := Encode(codecs, l)
		if err != nil {
			return nil, fmt.Errorf("failed to encode listing %d: %w", i, err)
		}
		properties = append(properties, p)
	}

	return &Corpus{codecs: codecs, properties: properties}, nil
}

// Encode converts a display-form listing into its encoded record.
func Encode(codecs *codec.Set, l models.Listing) (models.Property, error) {
	p := models.Property{
		BHK:       l.BHK,
		Area:      l.Area,
		Price:     l.Price,
		PriceUnit: l.PriceUnit,
	}

	var err error
	if p.Region, err = codecs.Encode(codec.FieldRegion, l.Region); err != nil {
		return p, err
	}
	if p.Locality, err = codecs.Encode(codec.FieldLocality, l.Locality); err != nil {
		return p, err
	}
	if p.Type, err = codecs.Encode(codec.FieldType, l.Type); err != nil {
		return p, err
	}
	if p.Status, err = codecs.Encode(codec.FieldStatus, l.Status); err != nil {
		return p, err
	}
	if p.Age, err = codecs.Encode(codec.FieldAge, l.Age); err != nil {
		return p, err
	}
	return p, nil
}

// Decode converts an encoded record back into display form.
func Decode(codecs *codec.Set, p models.Property) (models.Listing, error) {
	l := models.Listing{
		BHK:       p.BHK,
		Area:      p.Area,
		Price:     p.Price,
		PriceUnit: p.PriceUnit,
	}

	var err error
	if l.Region, err = codecs.Decode(codec.FieldRegion, p.Region); err != nil {
		return l, err
	}
	if l.Locality, err = codecs.Decode(codec.FieldLocality, p.Locality); err != nil {
		return l, err
	}
	if l.Type, err = codecs.Decode(codec.FieldType, p.Type); err != nil {
		return l, err
	}
	if l.Status, err = codecs.Decode(codec.FieldStatus, p.Status); err != nil {
		return l, err
	}
	if l.Age, err = codecs.Decode(codec.FieldAge, p.Age); err != nil {
		return l, err
	}
	return l, nil
}

// Codecs returns the codecs the corpus was encoded with.
func (c *Corpus) Codecs() *codec.Set {
	return c.codecs
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	return len(c.properties)
}

// All returns a view over every record.
func (c *Corpus) All() View {
	return View(c.properties)
}

// View is a read-only selection of corpus records in corpus order.
type View []models.Property

// Len returns the number of records in the view.
func (v View) Len() int {
	return len(v)
}

// ByRegion keeps the records of one region.
func (v View) ByRegion(code int) View {
	return lo.Filter(v, func(p models.Property, _ int) bool { return p.Region == code })
}

// ByLocality keeps the records of one locality.
func (v View) ByLocality(code int) View {
	return lo.Filter(v, func(p models.Property, _ int) bool { return p.Locality == code })
}

// ByBHK keeps the records with exactly bhk bedrooms.
func (v View) ByBHK(bhk int) View {
	return lo.Filter(v, func(p models.Property, _ int) bool { return p.BHK == bhk })
}

// TopN returns up to n codes of field ordered by descending frequency. Codes
// with equal counts keep the order of their first occurrence.
func (v View) TopN(field codec.Field, n int) ([]int, error) {
	counts := make(map[int]int)
	var order []int

	for _, p := range v {
		code, err := column(p, field)
		if err != nil {
			return nil, err
		}
		if _, seen := counts[code]; !seen {
			order = append(order, code)
		}
		counts[code]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if n < len(order) {
		order = order[:n]
	}
	return order, nil
}

// Mode returns the most frequent code of field, the first encountered one on
// ties. ok is false for an empty view.
func (v View) Mode(field codec.Field) (code int, ok bool, err error) {
	top, err := v.TopN(field, 1)
	if err != nil {
		return 0, false, err
	}
	if len(top) == 0 {
		return 0, false, nil
	}
	return top[0], true, nil
}

// Sample draws one record uniformly using rng. ok is false for an empty view.
func (v View) Sample(rng *rand.Rand) (models.Property, bool) {
	if len(v) == 0 {
		return models.Property{}, false
	}
	return v[rng.Intn(len(v))], true
}

func column(p models.Property, field codec.Field) (int, error) {
	switch field {
	case codec.FieldRegion:
		return p.Region, nil
	case codec.FieldLocality:
		return p.Locality, nil
	case codec.FieldType:
		return p.Type, nil
	case codec.FieldStatus:
		return p.Status, nil
	case codec.FieldAge:
		return p.Age, nil
	default:
		return 0, fmt.Errorf("field %q is not a categorical column", field)
	}
}
