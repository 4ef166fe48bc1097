package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

func TestNew_SortsAndDeduplicates(t *testing.T) {
	c := New(FieldRegion, []string{"Thane", "Airoli", "Thane", "Andheri West"})

	assert.Equal(t, []string{"Airoli", "Andheri West", "Thane"}, c.Classes())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, FieldRegion, c.Field())
}

func TestCodec_RoundTrip(t *testing.T) {
	values := []string{"Ready to move", "Under Construction", "Ready to move"}
	c := New(FieldStatus, values)

	for _, v := range values {
		code, err := c.Encode(v)
		require.NoError(t, err)

		decoded, err := c.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}

func TestCodec_EncodeUnknown(t *testing.T) {
	c := New(FieldRegion, []string{"Airoli"})

	_, err := c.Encode("Atlantis")
	assert.ErrorIs(t, err, models.ErrUnknownCategory)
	assert.False(t, c.Contains("Atlantis"))
	assert.True(t, c.Contains("Airoli"))
}

func TestCodec_DecodeOutOfRange(t *testing.T) {
	c := New(FieldAge, []string{"New", "Resale"})

	tests := []struct {
		name string
		code int
	}{
		{"negative", -1},
		{"past end", 2},
		{"far past end", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.code)
			assert.ErrorIs(t, err, models.ErrInvalidCode)
		})
	}
}

func TestCodec_ClassesIsACopy(t *testing.T) {
	c := New(FieldType, []string{"Apartment", "Villa"})

	classes := c.Classes()
	classes[0] = "Mutated"

	v, err := c.Decode(0)
	require.NoError(t, err)
	assert.Equal(t, "Apartment", v)
}

func TestSet_FieldsAreIndependent(t *testing.T) {
	s := NewSet(
		New(FieldRegion, []string{"Airoli", "Thane"}),
		New(FieldLocality, []string{"Sector 19", "Thane"}),
	)

	regionCode, err := s.Encode(FieldRegion, "Thane")
	require.NoError(t, err)
	localityCode, err := s.Encode(FieldLocality, "Thane")
	require.NoError(t, err)

	assert.Equal(t, 1, regionCode)
	assert.Equal(t, 1, localityCode)

	_, err = s.Encode(FieldLocality, "Airoli")
	assert.ErrorIs(t, err, models.ErrUnknownCategory)

	_, err = s.Decode(FieldStatus, 0)
	assert.Error(t, err)
}
