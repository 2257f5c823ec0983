package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere/store"
)

func testCatalog() []*store.CourseRecord {
	return []*store.CourseRecord{
		{ID: 1, Title: "Mathématiques Avancées", Description: "Algèbre linéaire et analyse.", Category: "Mathématiques", Level: "Avancé", Rating: 4.8},
		{ID: 2, Title: "Mathématiques pour débutants", Description: "Les bases du calcul.", Category: "Mathématiques", Level: "Débutant", Rating: 4.5},
		{ID: 3, Title: "Physique Quantique", Description: "Mécanique quantique.", Category: "Physique", Level: "Avancé", Rating: 4.7},
		{ID: 4, Title: "Programmation Python", Description: "Apprendre Python de zéro.", Category: "Informatique", Level: "Débutant", Rating: 4.9},
		{ID: 5, Title: "Algorithmes", Description: "Tris, graphes et complexité en informatique.", Category: "Informatique", Level: "Intermédiaire", Rating: 4.6},
	}
}

func TestSearch_RanksByTokenOverlap(t *testing.T) {
	results := Search("mathématiques avancées", testCatalog())

	require.NotEmpty(t, results)
	// Both tokens plus the full phrase hit only course 1.
	assert.Equal(t, int32(1), results[0].Course.ID)
	assert.Greater(t, results[0].Score, results[len(results)-1].Score)

	for _, r := range results {
		assert.Greater(t, r.Score, 0, "only scoring courses are returned")
	}
}

func TestSearch_TopThreeOnly(t *testing.T) {
	// "débutant" and "avancé" levels make every course match "cours de niveau".
	catalog := []*store.CourseRecord{
		{ID: 1, Title: "A informatique", Rating: 4.0},
		{ID: 2, Title: "B informatique", Rating: 4.1},
		{ID: 3, Title: "C informatique", Rating: 4.2},
		{ID: 4, Title: "D informatique", Rating: 4.3},
		{ID: 5, Title: "E informatique", Rating: 4.4},
	}

	results := Search("informatique", catalog)
	assert.Len(t, results, 3)
}

func TestSearch_TieBrokenByRating(t *testing.T) {
	catalog := []*store.CourseRecord{
		{ID: 1, Title: "Chimie générale", Rating: 4.1},
		{ID: 2, Title: "Chimie organique", Rating: 4.9},
		{ID: 3, Title: "Chimie minérale", Rating: 4.5},
	}

	results := Search("chimie", catalog)
	require.Len(t, results, 3)
	assert.Equal(t, int32(2), results[0].Course.ID)
	assert.Equal(t, int32(3), results[1].Course.ID)
	assert.Equal(t, int32(1), results[2].Course.ID)
}

func TestSearch_TieBrokenByCatalogOrder(t *testing.T) {
	// Same score, same rating: original catalog order decides.
	catalog := []*store.CourseRecord{
		{ID: 7, Title: "Dessin", Rating: 4.0},
		{ID: 3, Title: "Dessin académique", Rating: 4.0},
		{ID: 9, Title: "Dessin industriel", Rating: 4.0},
	}

	results := Search("dessin", catalog)
	require.Len(t, results, 3)
	assert.Equal(t, int32(7), results[0].Course.ID)
	assert.Equal(t, int32(3), results[1].Course.ID)
	assert.Equal(t, int32(9), results[2].Course.ID)
}

func TestSearch_NoMatches(t *testing.T) {
	results := Search("astrophysique stellaire", testCatalog())
	assert.Empty(t, results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	assert.Nil(t, Search("", testCatalog()))
	assert.Nil(t, Search("   ", testCatalog()))
}

func TestSearch_Deterministic(t *testing.T) {
	first := Search("cours de maths", testCatalog())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Search("cours de maths", testCatalog()))
	}
}

// The canonical lookup: "cours de maths" must surface the advanced math
// course even though "maths" is not a literal substring of the title.
func TestSearch_MathQueryFindsAdvancedMath(t *testing.T) {
	results := Search("cours de maths", testCatalog())

	require.NotEmpty(t, results)
	titles := make([]string, 0, len(results))
	for _, r := range results {
		titles = append(titles, r.Course.Title)
	}
	assert.Contains(t, titles, "Mathématiques Avancées")
}

func TestSearch_AccentInsensitive(t *testing.T) {
	results := Search("mathematiques avancees", testCatalog())

	require.NotEmpty(t, results)
	assert.Equal(t, "Mathématiques Avancées", results[0].Course.Title)
}
