package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SeedsDefaults(t *testing.T) {
	c := New()

	assert.Equal(t, []string{"Medicine A", "Medicine B", "Medicine C"}, c.Items())
	assert.Empty(t, c.Favorites())
	assert.Empty(t, c.Order())
	assert.Equal(t, 3, c.Len())
}

func TestNew_DoesNotShareDefaults(t *testing.T) {
	c := New()
	c.Add("Medicine D")
	c.Delete("Medicine A")

	assert.Equal(t, []string{"Medicine A", "Medicine B", "Medicine C"}, DefaultMedicines)
}

func TestFromItems_SkipsEmptyAndDuplicates(t *testing.T) {
	c := FromItems([]string{"Aspirin", "", "Ibuprofen", "Aspirin"})

	assert.Equal(t, []string{"Aspirin", "Ibuprofen"}, c.Items())
}

func TestCatalog_Add(t *testing.T) {
	tests := []struct {
		name      string
		add       []string
		wantItems []string
		wantOrder []string
	}{
		{
			name:      "new name appends to items and order",
			add:       []string{"Medicine D"},
			wantItems: []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"},
			wantOrder: []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"},
		},
		{
			name:      "duplicate is ignored",
			add:       []string{"Medicine D", "Medicine D"},
			wantItems: []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"},
			wantOrder: []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"},
		},
		{
			name:      "seeded name is ignored",
			add:       []string{"Medicine B"},
			wantItems: []string{"Medicine A", "Medicine B", "Medicine C"},
			wantOrder: []string{},
		},
		{
			name:      "empty name is ignored",
			add:       []string{""},
			wantItems: []string{"Medicine A", "Medicine B", "Medicine C"},
			wantOrder: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			for _, name := range tt.add {
				c.Add(name)
			}

			assert.Equal(t, tt.wantItems, c.Items())
			if len(tt.wantOrder) == 0 {
				assert.Empty(t, c.Order())
			} else {
				assert.Equal(t, tt.wantOrder, c.Order())
			}
		})
	}
}

func TestCatalog_Add_ReportsChange(t *testing.T) {
	c := New()

	assert.True(t, c.Add("Medicine D"))
	assert.False(t, c.Add("Medicine D"))
	assert.False(t, c.IsFavorite("Medicine D"))
}

func TestCatalog_Add_OrderStaysPermutationAfterEmptyStart(t *testing.T) {
	c := New()
	c.Add("Medicine D")

	// Every item must still show up in the display order.
	assert.ElementsMatch(t, c.Items(), c.Ordered())
}

func TestCatalog_Delete_Cascades(t *testing.T) {
	c := New()
	c.Add("Medicine D")
	c.ToggleFavorite("Medicine D")
	require.True(t, c.IsFavorite("Medicine D"))

	changed := c.Delete("Medicine D")

	assert.True(t, changed)
	assert.NotContains(t, c.Items(), "Medicine D")
	assert.NotContains(t, c.Order(), "Medicine D")
	assert.False(t, c.IsFavorite("Medicine D"))
}

func TestCatalog_Delete_Absent(t *testing.T) {
	c := New()

	changed := c.Delete("Nope")

	assert.False(t, changed)
	assert.Equal(t, []string{"Medicine A", "Medicine B", "Medicine C"}, c.Items())
}

func TestCatalog_Delete_ClearsFavoriteOfUnknownName(t *testing.T) {
	c := New()
	c.ToggleFavorite("Ghost")

	changed := c.Delete("Ghost")

	assert.True(t, changed)
	assert.False(t, c.IsFavorite("Ghost"))
}

func TestCatalog_ToggleFavorite(t *testing.T) {
	c := New()

	assert.True(t, c.ToggleFavorite("Medicine B"))
	assert.True(t, c.IsFavorite("Medicine B"))

	assert.False(t, c.ToggleFavorite("Medicine B"))
	assert.False(t, c.IsFavorite("Medicine B"))
	assert.Empty(t, c.Favorites())
}

func TestCatalog_ToggleFavorite_UnknownName(t *testing.T) {
	c := New()

	c.ToggleFavorite("Ghost")

	assert.True(t, c.IsFavorite("Ghost"))
	assert.NotContains(t, c.Items(), "Ghost")
	assert.NotContains(t, c.Ordered(), "Ghost")
}

func TestCatalog_Reorder(t *testing.T) {
	tests := []struct {
		name        string
		dragged     string
		target      string
		wantChanged bool
		wantItems   []string
	}{
		{
			name:        "move last to front",
			dragged:     "Medicine D",
			target:      "Medicine A",
			wantChanged: true,
			wantItems:   []string{"Medicine D", "Medicine A", "Medicine B", "Medicine C"},
		},
		{
			name:        "move first down",
			dragged:     "Medicine A",
			target:      "Medicine C",
			wantChanged: true,
			wantItems:   []string{"Medicine B", "Medicine C", "Medicine A", "Medicine D"},
		},
		{
			name:        "adjacent swap downward",
			dragged:     "Medicine B",
			target:      "Medicine C",
			wantChanged: true,
			wantItems:   []string{"Medicine A", "Medicine C", "Medicine B", "Medicine D"},
		},
		{
			name:        "same name",
			dragged:     "Medicine B",
			target:      "Medicine B",
			wantChanged: false,
			wantItems:   []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"},
		},
		{
			name:        "unknown dragged",
			dragged:     "Nope",
			target:      "Medicine A",
			wantChanged: false,
			wantItems:   []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"},
		},
		{
			name:        "unknown target",
			dragged:     "Medicine A",
			target:      "Nope",
			wantChanged: false,
			wantItems:   []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Add("Medicine D")

			changed := c.Reorder(tt.dragged, tt.target)

			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantItems, c.Items())
			assert.Equal(t, tt.wantItems, c.Order())
		})
	}
}

func TestCatalog_Reorder_EstablishesCustomOrder(t *testing.T) {
	c := New()
	require.Empty(t, c.Order())

	c.Reorder("Medicine C", "Medicine A")

	assert.Equal(t, []string{"Medicine C", "Medicine A", "Medicine B"}, c.Order())
}

func TestCatalog_Filtered(t *testing.T) {
	c := FromItems([]string{"Aspirin", "Ibuprofen", "Paracetamol", "aspirin forte"})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns all", "", []string{"Aspirin", "Ibuprofen", "Paracetamol", "aspirin forte"}},
		{"lower case", "asp", []string{"Aspirin", "aspirin forte"}},
		{"upper case", "ASP", []string{"Aspirin", "aspirin forte"}},
		{"middle of name", "prof", []string{"Ibuprofen"}},
		{"no match", "zinc", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Filtered(tt.query))
		})
	}
}

func TestCatalog_Filtered_CaseInsensitive(t *testing.T) {
	c := New()

	assert.Equal(t, c.Filtered("med"), c.Filtered("MED"))
	assert.Equal(t, c.Items(), c.Filtered(""))
}

func TestCatalog_Ordered_FavoritesFirst(t *testing.T) {
	c := FromItems([]string{"A", "B", "C", "D", "E"})
	c.ToggleFavorite("D")
	c.ToggleFavorite("B")

	// Favorites keep their item order (B before D), not the order they were marked.
	assert.Equal(t, []string{"B", "D", "A", "C", "E"}, c.Ordered())
}

func TestCatalog_Ordered_UsesCustomOrder(t *testing.T) {
	c := FromItems([]string{"A", "B", "C"})
	c.Reorder("C", "A")
	c.ToggleFavorite("B")

	assert.Equal(t, []string{"B", "C", "A"}, c.Ordered())
}

func TestCatalog_Ordered_NoFavorites(t *testing.T) {
	c := New()

	assert.Equal(t, c.Items(), c.Ordered())
}

func TestCatalog_Scenario(t *testing.T) {
	c := New()

	c.ToggleFavorite("Medicine C")
	assert.Equal(t, []string{"Medicine C"}, c.Favorites())

	assert.Equal(t, []string{"Medicine C", "Medicine A", "Medicine B"}, c.Ordered())

	c.Add("Medicine D")
	assert.Equal(t, []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"}, c.Items())
	assert.Equal(t, []string{"Medicine A", "Medicine B", "Medicine C", "Medicine D"}, c.Order())

	c.Reorder("Medicine D", "Medicine A")
	assert.Equal(t, "Medicine D", c.Items()[0])
	assert.Equal(t, []string{"Medicine D", "Medicine A", "Medicine B", "Medicine C"}, c.Order())

	c.Delete("Medicine C")
	assert.Empty(t, c.Favorites())
	assert.Equal(t, []string{"Medicine D", "Medicine A", "Medicine B"}, c.Items())
	assert.Equal(t, []string{"Medicine D", "Medicine A", "Medicine B"}, c.Order())
}

func TestCatalog_CopiesAreIndependent(t *testing.T) {
	c := New()

	items := c.Items()
	items[0] = "changed"

	assert.Equal(t, "Medicine A", c.Items()[0])
}

func TestCatalog_Suggest(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"typo ranks closest first", "Medicne A", 3, []string{"Medicine A", "Medicine B", "Medicine C"}},
		{"limit trims", "medicne a", 1, []string{"Medicine A"}},
		{"far query", "aspirin", 3, []string{}},
		{"empty query", "", 3, []string{}},
		{"zero limit", "Medicine A", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Suggest(tt.query, tt.limit)
			assert.Equal(t, tt.want, got)
		})
	}
}
