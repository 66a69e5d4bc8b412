package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(t *testing.T, amount string) Money {
	t.Helper()
	m, err := NewMoney(amount, "USD")
	require.NoError(t, err)
	return m
}

// teeProduct has Color in {Red, Blue}, Size in {S, M} and no (Blue, M) variant.
func teeProduct(t *testing.T) *Product {
	t.Helper()
	return &Product{
		ID:     "prod-tee",
		Title:  "Classic Tee",
		Handle: "classic-tee",
		Options: []Option{
			{Name: "Color", Values: []string{"Red", "Blue"}},
			{Name: "Size", Values: []string{"S", "M"}},
		},
		Variants: []Variant{
			{
				ID: "V1", Title: "Red / S", Price: usd(t, "20.00"), AvailableForSale: true,
				SelectedOptions: []SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "S"}},
			},
			{
				ID: "V2", Title: "Red / M", Price: usd(t, "22.00"), AvailableForSale: false,
				SelectedOptions: []SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "M"}},
			},
			{
				ID: "V3", Title: "Blue / S", Price: usd(t, "20.00"), AvailableForSale: true,
				SelectedOptions: []SelectedOption{{Name: "Color", Value: "Blue"}, {Name: "Size", Value: "S"}},
			},
		},
		Images:     []Image{{URL: "https://cdn.example.com/tee.jpg"}},
		PriceRange: PriceRange{MinVariantPrice: usd(t, "20.00")},
	}
}

func TestDefaultSelection(t *testing.T) {
	p := teeProduct(t)

	assert.Equal(t, Selection{"Color": "Red", "Size": "S"}, DefaultSelection(p))

	t.Run("no variants gives empty selection", func(t *testing.T) {
		p := &Product{ID: "empty", Options: []Option{{Name: "Size", Values: []string{"S"}}}}
		assert.Empty(t, DefaultSelection(p))

		_, err := DefaultVariant(p)
		assert.ErrorIs(t, err, ErrProductUnresolvable)
	})

	t.Run("nil product", func(t *testing.T) {
		assert.Empty(t, DefaultSelection(nil))
	})
}

func TestResolveVariant_DefaultRoundTrip(t *testing.T) {
	products := []*Product{teeProduct(t), {
		ID: "single",
		Variants: []Variant{
			{ID: "only", Title: "Default Title", SelectedOptions: []SelectedOption{{Name: "Title", Value: "Default Title"}}},
		},
	}}

	for _, p := range products {
		v, err := ResolveVariant(p, DefaultSelection(p))
		require.NoError(t, err)
		assert.Same(t, &p.Variants[0], v)
	}
}

func TestResolveVariant(t *testing.T) {
	p := teeProduct(t)

	tests := []struct {
		name      string
		selection Selection
		wantID    string
		wantErr   error
	}{
		{name: "red small", selection: Selection{"Color": "Red", "Size": "S"}, wantID: "V1"},
		{name: "red medium unavailable still resolves", selection: Selection{"Color": "Red", "Size": "M"}, wantID: "V2"},
		{name: "blue small", selection: Selection{"Color": "Blue", "Size": "S"}, wantID: "V3"},
		{name: "sparse combination", selection: Selection{"Color": "Blue", "Size": "M"}, wantErr: ErrNoMatchingVariant},
		{name: "partial selection", selection: Selection{"Color": "Red"}, wantErr: ErrNoMatchingVariant},
		{name: "empty selection", selection: Selection{}, wantErr: ErrNoMatchingVariant},
		{name: "extra keys are ignored", selection: Selection{"Color": "Blue", "Size": "S", "Fit": "Slim"}, wantID: "V3"},
		{name: "value case matters", selection: Selection{"Color": "red", "Size": "S"}, wantErr: ErrNoMatchingVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ResolveVariant(p, tt.selection)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, v)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, v.ID)
		})
	}
}

func TestResolveVariant_ProperSubsetNeverMatches(t *testing.T) {
	p := teeProduct(t)
	full := DefaultSelection(p)

	for name := range full {
		partial := full.Clone()
		delete(partial, name)

		_, err := ResolveVariant(p, partial)
		assert.ErrorIs(t, err, ErrNoMatchingVariant, "dropping %s", name)
	}
}

func TestResolveVariant_FirstMatchWins(t *testing.T) {
	p := teeProduct(t)
	dup := p.Variants[0]
	dup.ID = "V1-dup"
	p.Variants = append(p.Variants, dup)

	v, err := ResolveVariant(p, Selection{"Color": "Red", "Size": "S"})
	require.NoError(t, err)
	assert.Equal(t, "V1", v.ID)
}

func TestUpdateSelection(t *testing.T) {
	original := Selection{"Color": "Red", "Size": "S"}

	next := UpdateSelection(original, "Size", "M")

	assert.Equal(t, Selection{"Color": "Red", "Size": "M"}, next)
	assert.Equal(t, Selection{"Color": "Red", "Size": "S"}, original, "input must not change")

	added := UpdateSelection(nil, "Color", "Blue")
	assert.Equal(t, Selection{"Color": "Blue"}, added)
}
