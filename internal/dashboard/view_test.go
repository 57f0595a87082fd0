package dashboard

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sibintb/submanager/internal/models"
)

func ids(list []models.Subscription) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func TestFilterAndSort_Filters(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "default query sorts by next payment",
			query: DefaultQuery(),
			want:  []string{"5", "3", "4", "1", "6", "2"},
		},
		{
			name:  "category filter",
			query: Query{Category: "Entertainment", SortKey: SortByName, SortDirection: Asc},
			want:  []string{"1", "4"},
		},
		{
			name:  "search is case-insensitive",
			query: Query{Category: AllCategories, Search: "GITHUB", SortKey: SortByName, SortDirection: Asc},
			want:  []string{"2"},
		},
		{
			name:  "search substring",
			query: Query{Category: AllCategories, Search: "ot", SortKey: SortByName, SortDirection: Asc},
			want:  []string{"2", "4"},
		},
		{
			name:  "empty category means all",
			query: Query{SortKey: SortByPrice, SortDirection: Desc},
			want:  []string{"2", "5", "3", "1", "6", "4"},
		},
		{
			name:  "no match",
			query: Query{Category: "Utilities"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterAndSort(sampleList(), tt.query)))
		})
	}
}

func TestFilterAndSort_StringsIgnoreCase(t *testing.T) {
	got := FilterAndSort(sampleList(), Query{SortKey: SortByName, SortDirection: Asc})
	// "github copilot" sorts between "AWS" and "Headspace" despite its lower case.
	assert.Equal(t, []string{"3", "2", "6", "5", "1", "4"}, ids(got))
}

func TestFilterAndSort_ActiveSortIsStable(t *testing.T) {
	got := FilterAndSort(sampleList(), Query{SortKey: SortByActive, SortDirection: Asc})
	assert.Equal(t, []string{"4", "1", "2", "3", "5", "6"}, ids(got))

	got = FilterAndSort(sampleList(), Query{SortKey: SortByActive, SortDirection: Desc})
	assert.Equal(t, []string{"1", "2", "3", "5", "6", "4"}, ids(got))
}

func TestFilterAndSort_UnknownKeyKeepsOrder(t *testing.T) {
	got := FilterAndSort(sampleList(), Query{SortKey: "color", SortDirection: Desc})
	assert.Equal(t, ids(sampleList()), ids(got))
}

func TestFilterAndSort_DoesNotMutateInput(t *testing.T) {
	list := sampleList()
	before := slices.Clone(list)
	_ = FilterAndSort(list, Query{SortKey: SortByPrice, SortDirection: Desc})
	assert.Equal(t, before, list)
}

func TestFilterAndSort_Idempotent(t *testing.T) {
	for _, key := range []string{SortByName, SortByPrice, SortByNextPayment, SortByCategory, SortByActive} {
		for _, dir := range []string{Asc, Desc} {
			q := Query{SortKey: key, SortDirection: dir}
			once := FilterAndSort(sampleList(), q)
			twice := FilterAndSort(once, q)
			assert.Equal(t, once, twice, "%s %s", key, dir)
		}
	}
}

func TestFilterAndSort_OppositeDirectionsReverse(t *testing.T) {
	// Prices are pairwise distinct, so no element ties on the key.
	asc := FilterAndSort(sampleList(), Query{SortKey: SortByPrice, SortDirection: Asc})
	desc := FilterAndSort(sampleList(), Query{SortKey: SortByPrice, SortDirection: Desc})

	reversed := slices.Clone(desc)
	slices.Reverse(reversed)
	assert.Equal(t, asc, reversed)
}

func TestQuery_ToggleSort(t *testing.T) {
	q := DefaultQuery()

	q = q.ToggleSort(SortByNextPayment)
	assert.Equal(t, Desc, q.SortDirection)

	q = q.ToggleSort(SortByNextPayment)
	assert.Equal(t, Asc, q.SortDirection)

	q = q.ToggleSort(SortByNextPayment).ToggleSort(SortByPrice)
	assert.Equal(t, SortByPrice, q.SortKey)
	assert.Equal(t, Asc, q.SortDirection)
}
