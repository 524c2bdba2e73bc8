package repos_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"noiressence/internal/domain"
	"noiressence/internal/repos"
)

func TestSeededCatalog(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	prods := repos.NewProductRepo(db)

	all, err := prods.List()
	require.NoError(t, err)
	require.Len(t, all, 6)
	require.Equal(t, "Midnight Oud", all[0].Name)
	require.Equal(t, []string{"Oud", "Amber", "Saffron"}, all[0].Notes)
	require.True(t, all[0].Price.Equal(decimal.NewFromInt(185)))
	require.True(t, all[0].IsNew)

	men, err := prods.ListByCategory(domain.Men)
	require.NoError(t, err)
	for _, p := range men {
		require.Equal(t, domain.Men, p.Category)
	}

	counts, err := repos.NewCategoryRepo(db).Counts()
	require.NoError(t, err)
	require.Len(t, counts, 3)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	require.Equal(t, 6, total)

	posts, err := repos.NewContentRepo(db).JournalPosts()
	require.NoError(t, err)
	require.Len(t, posts, 3)
}

func TestCreateAppendsAndDeleteRemoves(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	prods := repos.NewProductRepo(db)

	p := domain.Product{
		ID: "new-1", Name: "Amber Nuit", Brand: domain.HouseBrand,
		Price: decimal.RequireFromString("99.50"), Notes: []string{"Amber", "Amber"},
		Image: domain.PlaceholderImage, Category: domain.Women, IsNew: true,
	}
	require.NoError(t, prods.Create(p))

	all, err := prods.List()
	require.NoError(t, err)
	last := all[len(all)-1]
	require.Equal(t, "new-1", last.ID)
	require.Equal(t, []string{"Amber", "Amber"}, last.Notes)
	require.Equal(t, "99.5", last.Price.String())

	got, err := prods.Get("new-1")
	require.NoError(t, err)
	require.Equal(t, domain.Women, got.Category)

	found, err := prods.Search("amber", domain.Women)
	require.NoError(t, err)
	require.NotEmpty(t, found)

	ok, err := prods.Delete("new-1")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = prods.Delete("new-1")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = prods.Get("new-1")
	require.Error(t, err)
}

func TestSchemaRejectsUnknownCategory(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	err = repos.NewProductRepo(db).Create(domain.Product{
		ID: "x", Name: "X", Brand: domain.HouseBrand, Price: decimal.NewFromInt(1),
		Image: domain.PlaceholderImage, Category: domain.Category("Kids"),
	})
	require.Error(t, err)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	prods := repos.NewProductRepo(db)

	for _, q := range []string{"_", "%", `\`} {
		found, err := prods.Search(q, "")
		require.NoError(t, err)
		require.Empty(t, found, "q=%q", q)
	}

	require.NoError(t, prods.Create(domain.Product{
		ID: "lit-1", Name: "Rose_Oud 100%", Brand: domain.HouseBrand, Price: decimal.NewFromInt(80),
		Image: domain.PlaceholderImage, Category: domain.Unisex,
	}))
	found, err := prods.Search("e_o", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "lit-1", found[0].ID)

	found, err = prods.Search("100%", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
}
