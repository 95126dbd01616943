package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/foodcatalog/internal/database"
	"github.com/example/foodcatalog/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func categoryTranslations(names map[string]string) []models.CategoryTranslation {
	var out []models.CategoryTranslation
	for _, code := range []string{"kk", "uz", "ru"} {
		if name, ok := names[code]; ok {
			out = append(out, models.CategoryTranslation{LangCode: code, Name: name})
		}
	}
	return out
}

func createCategory(t *testing.T, repo *CategoryRepository, names map[string]string) *models.Category {
	t.Helper()
	category := &models.Category{}
	require.NoError(t, repo.Create(context.Background(), category, categoryTranslations(names)))
	return category
}

func createProduct(t *testing.T, repo *ProductRepository, categoryID uuid.UUID, price int64, available bool, names map[string]string) *models.Product {
	t.Helper()
	var translations []models.ProductTranslation
	for _, code := range []string{"kk", "uz", "ru"} {
		if name, ok := names[code]; ok {
			translations = append(translations, models.ProductTranslation{LangCode: code, Name: name})
		}
	}
	product := &models.Product{CategoryID: categoryID, Price: price, IsAvailable: available}
	require.NoError(t, repo.Create(context.Background(), product, translations))
	return product
}

func TestCategoryRepositoryReplaceTranslations(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(openTestDB(t))

	category := createCategory(t, repo, map[string]string{"kk": "Salat", "uz": "Salat", "ru": "Салат"})
	before := category.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.ReplaceTranslations(ctx, category, categoryTranslations(map[string]string{
		"uz": "Salatlar",
		"ru": "Салаты",
	})))

	loaded, err := repo.FindByID(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Translations, 2)
	assert.Equal(t, "uz", loaded.Translations[0].LangCode)
	assert.Equal(t, "Salatlar", loaded.Translations[0].Name)
	assert.Equal(t, "ru", loaded.Translations[1].LangCode)
	assert.Equal(t, "Салаты", loaded.Translations[1].Name)
	assert.True(t, loaded.UpdatedAt.After(before))
}

func TestCategoryRepositoryUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(openTestDB(t))

	first := createCategory(t, repo, map[string]string{"uz": "Ichimliklar"})

	taken, err := repo.NameTaken(ctx, "uz", "Ichimliklar", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.NameTaken(ctx, "uz", "Ichimliklar", first.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own rows are ignored")

	taken, err = repo.NameTaken(ctx, "ru", "Ichimliklar", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken, "uniqueness is per locale")

	err = repo.Create(ctx, &models.Category{}, categoryTranslations(map[string]string{"uz": "Ichimliklar"}))
	assert.ErrorIs(t, err, ErrDuplicateTranslation)

	categories, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1, "failed create must not leave a category behind")
}

func TestCategoryRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(openTestDB(t))
	category := createCategory(t, repo, map[string]string{"kk": "Sorpa"})

	require.NoError(t, repo.Delete(ctx, category.ID))

	_, err := repo.FindByID(ctx, category.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, category.ID), ErrNotFound)

	taken, err := repo.NameTaken(ctx, "kk", "Sorpa", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken, "translations are removed with the category")
}

func TestProductRepositoryList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	categories := NewCategoryRepository(db)
	repo := NewProductRepository(db)

	salads := createCategory(t, categories, map[string]string{"uz": "Salatlar", "ru": "Салаты"})
	drinks := createCategory(t, categories, map[string]string{"uz": "Ichimliklar", "ru": "Напитки"})

	caesar := createProduct(t, repo, salads.ID, 25000, true, map[string]string{"uz": "Sezar", "ru": "Цезарь"})
	greek := createProduct(t, repo, salads.ID, 30000, false, map[string]string{"uz": "Grek salati"})
	cola := createProduct(t, repo, drinks.ID, 8000, true, map[string]string{"uz": "Kola"})

	int64Ptr := func(v int64) *int64 { return &v }
	boolPtr := func(v bool) *bool { return &v }

	testCases := []struct {
		name     string
		filters  ProductFilters
		expected []uuid.UUID
		total    int64
	}{
		{
			name:     "price ascending",
			filters:  ProductFilters{SortBy: SortByPrice, SortOrder: "asc"},
			expected: []uuid.UUID{cola.ID, caesar.ID, greek.ID},
			total:    3,
		},
		{
			name:     "inclusive price range",
			filters:  ProductFilters{MinPrice: int64Ptr(8000), MaxPrice: int64Ptr(25000), SortBy: SortByPrice, SortOrder: "asc"},
			expected: []uuid.UUID{cola.ID, caesar.ID},
			total:    2,
		},
		{
			name:     "availability",
			filters:  ProductFilters{IsAvailable: boolPtr(false)},
			expected: []uuid.UUID{greek.ID},
			total:    1,
		},
		{
			name:     "category",
			filters:  ProductFilters{CategoryID: &drinks.ID},
			expected: []uuid.UUID{cola.ID},
			total:    1,
		},
		{
			name:     "search product name case insensitive",
			filters:  ProductFilters{Search: "sEzAr"},
			expected: []uuid.UUID{caesar.ID},
			total:    1,
		},
		{
			name:     "search category name",
			filters:  ProductFilters{Search: "ichimlik"},
			expected: []uuid.UUID{cola.ID},
			total:    1,
		},
		{
			name:     "search combined with price",
			filters:  ProductFilters{Search: "salat", MinPrice: int64Ptr(26000)},
			expected: []uuid.UUID{greek.ID},
			total:    1,
		},
		{
			name:     "category name descending",
			filters:  ProductFilters{SortBy: SortByCategoryName, SortOrder: "desc", Locale: "uz"},
			expected: nil,
			total:    3,
		},
		{
			name:     "second page",
			filters:  ProductFilters{SortBy: SortByPrice, SortOrder: "asc", Page: 2, PerPage: 2},
			expected: []uuid.UUID{greek.ID},
			total:    3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			products, total, err := repo.List(ctx, tc.filters)
			require.NoError(t, err)
			assert.Equal(t, tc.total, total)

			if tc.expected == nil {
				return
			}
			ids := make([]uuid.UUID, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}

	t.Run("category name sorting groups by category", func(t *testing.T) {
		products, _, err := repo.List(ctx, ProductFilters{SortBy: SortByCategoryName, SortOrder: "desc", Locale: "uz"})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, salads.ID, products[0].CategoryID)
		assert.Equal(t, salads.ID, products[1].CategoryID)
		assert.Equal(t, drinks.ID, products[2].CategoryID)
		require.NotNil(t, products[0].Category)
		assert.Len(t, products[0].Category.Translations, 2)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		juice := createProduct(t, repo, drinks.ID, 12000, true, map[string]string{"uz": "Sharbat 100% tabiiy"})

		searches := []struct {
			term     string
			expected []uuid.UUID
		}{
			{term: "%", expected: []uuid.UUID{juice.ID}},
			{term: "100%", expected: []uuid.UUID{juice.ID}},
			{term: "_", expected: []uuid.UUID{}},
			{term: `\`, expected: []uuid.UUID{}},
		}
		for _, search := range searches {
			products, total, err := repo.List(ctx, ProductFilters{Search: search.term})
			require.NoError(t, err)
			assert.Equal(t, int64(len(search.expected)), total, search.term)

			ids := make([]uuid.UUID, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, search.expected, ids, search.term)
		}
	})
}

func TestProductRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	categories := NewCategoryRepository(db)
	repo := NewProductRepository(db)

	category := createCategory(t, categories, map[string]string{"uz": "Pitsa"})
	product := createProduct(t, repo, category.ID, 50000, true, map[string]string{"uz": "Margarita", "ru": "Маргарита"})

	t.Run("fields only keep translations", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, product, map[string]interface{}{"price": int64(55000), "is_available": false}, nil))

		loaded, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(55000), loaded.Price)
		assert.False(t, loaded.IsAvailable)
		assert.Len(t, loaded.Translations, 2)
	})

	t.Run("translations are replaced", func(t *testing.T) {
		description := "Pomidor va pishloq"
		require.NoError(t, repo.Update(ctx, product, nil, []models.ProductTranslation{
			{LangCode: "kk", Name: "Margarita"},
			{LangCode: "uz", Name: "Margarita", Description: &description},
		}))

		loaded, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Translations, 2)
		assert.Equal(t, "kk", loaded.Translations[0].LangCode)
		assert.Equal(t, "uz", loaded.Translations[1].LangCode)
		require.NotNil(t, loaded.Translations[1].Description)
		assert.Equal(t, description, *loaded.Translations[1].Description)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, product.ID))
		_, err := repo.FindByID(ctx, product.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, product.ID), ErrNotFound)
	})
}

func TestUserRepositoryTokens(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	user := &models.User{Login: "admin", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, &models.User{Login: "admin", PasswordHash: "y", Role: models.RoleAdmin}), ErrDuplicateLogin)

	exists, err := repo.LoginExists(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, exists)

	token := &models.AccessToken{UserID: user.ID, Name: "auth_token", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreateToken(ctx, token))

	found, err := repo.FindToken(ctx, token.ID, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found.LastUsedAt)

	_, err = repo.FindToken(ctx, token.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.TouchToken(ctx, token.ID, time.Now()))
	found, err = repo.FindToken(ctx, token.ID, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.LastUsedAt)

	require.NoError(t, repo.DeleteToken(ctx, token.ID))
	assert.ErrorIs(t, repo.DeleteToken(ctx, token.ID), ErrNotFound)
}

func TestClientRepositoryList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	repo := NewClientRepository(db)

	for _, login := range []string{"ali", "vali", "guli"} {
		user := &models.User{Login: login, PasswordHash: "x", Phone: "+99890" + login, Role: models.RoleClient}
		require.NoError(t, users.Create(ctx, user))
		require.NoError(t, db.Create(&models.Client{UserID: user.ID, FirstName: login}).Error)
	}

	clients, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, clients, 2)
	require.NotNil(t, clients[0].User)
	assert.Equal(t, clients[0].FirstName, clients[0].User.Login)

	clients, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}
