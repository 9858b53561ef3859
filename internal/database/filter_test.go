package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agonsep/21stCentury/pkg/models"
)

func TestParseProductFilter(t *testing.T) {
	f, err := ParseProductFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultProductFilter(), f)

	q := url.Values{
		"manufacturer": {" ABB "},
		"origin":       {"USA,Spain", "Germany"},
		"neviEligible": {"false"},
		"sort":         {"cost"},
		"order":        {"DESC"},
		"limit":        {"10"},
		"offset":       {"20"},
	}
	f, err = ParseProductFilter(q)
	require.NoError(t, err)
	assert.Equal(t, "ABB", f.Manufacturer)
	assert.Equal(t, []string{"USA", "Spain", "Germany"}, f.Origins)
	require.NotNil(t, f.NEVIEligible)
	assert.False(t, *f.NEVIEligible)
	assert.Equal(t, SortCost, f.Sort)
	assert.True(t, f.Descending)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 20, f.Offset)

	roundTrip, err := ParseProductFilter(f.Query())
	require.NoError(t, err)
	assert.Equal(t, f, roundTrip)
}

func TestParseProductFilter_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"unknown sort", "sort=color", "sort"},
		{"bad order", "order=sideways", "order"},
		{"zero limit", "limit=0", "limit"},
		{"huge limit", "limit=100000", "limit"},
		{"text limit", "limit=ten", "limit"},
		{"negative offset", "offset=-1", "offset"},
		{"bad bool", "neviEligible=maybe", "neviEligible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			_, err = ParseProductFilter(q)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{tt.field}, verr.Fields)
		})
	}
}
