package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/foodcatalog/internal/models"
)

const (
	SortByCreatedAt    = "created_at"
	SortByPrice        = "price"
	SortByCategoryName = "category_name"
)

// ProductFilters narrows and orders a product listing. Nil pointers and
// empty strings mean "no filter".
type ProductFilters struct {
	CategoryID  *uuid.UUID
	IsAvailable *bool
	Search      string
	MinPrice    *int64
	MaxPrice    *int64
	SortBy      string
	SortOrder   string
	// Locale selects which category translation category_name sorting uses.
	Locale  string
	Page    int
	PerPage int
}

// ProductRepository persists products and their translations.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func orderedProductTranslations(db *gorm.DB) *gorm.DB {
	return db.Order(localeOrder)
}

func (r *ProductRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Translations", orderedProductTranslations).
		Preload("Category").
		Preload("Category.Translations", orderedCategoryTranslations)
}

// List returns one page of products matching filters plus the total match count.
func (r *ProductRepository) List(ctx context.Context, filters ProductFilters) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filters.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filters.CategoryID)
	}
	if filters.IsAvailable != nil {
		query = query.Where("products.is_available = ?", *filters.IsAvailable)
	}
	if filters.MinPrice != nil {
		query = query.Where("products.price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filters.MaxPrice)
	}
	if filters.Search != "" {
		pattern := containsPattern(r.db, filters.Search)
		productMatch := fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_translations pt WHERE pt.product_id = products.id AND (%s OR %s))",
			containsClause(r.db, "pt.name"), containsClause(r.db, "pt.description"),
		)
		categoryMatch := fmt.Sprintf(
			"EXISTS (SELECT 1 FROM category_translations ct WHERE ct.category_id = products.category_id AND %s)",
			containsClause(r.db, "ct.name"),
		)
		query = query.Where("("+productMatch+" OR "+categoryMatch+")", pattern, pattern, pattern)
	}

	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if filters.SortOrder == "asc" {
		direction = "ASC"
	}

	find := base.Select("products.*")
	switch filters.SortBy {
	case SortByPrice:
		find = find.Order("products.price " + direction)
	case SortByCategoryName:
		find = find.
			Joins("LEFT JOIN category_translations sort_ct ON sort_ct.category_id = products.category_id AND sort_ct.lang_code = ?", filters.Locale).
			Order("sort_ct.name " + direction)
	default:
		find = find.Order("products.created_at " + direction)
	}
	find = find.Order("products.id ASC")

	page, perPage := filters.Page, filters.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}

	var products []models.Product
	if err := r.withRelations(find).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// FindByID loads a product with translations and its category.
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.withRelations(r.db.WithContext(ctx)).First(&product, "products.id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

// NameTaken reports whether name is used in lang by any product other than except.
func (r *ProductRepository) NameTaken(ctx context.Context, lang, name string, except uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductTranslation{}).
		Where("lang_code = ? AND name = ?", lang, name)
	if except != uuid.Nil {
		query = query.Where("product_id <> ?", except)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the product row and its translations in one transaction.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product, translations []models.ProductTranslation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}
		for i := range translations {
			translations[i].ProductID = product.ID
		}
		if len(translations) > 0 {
			if err := tx.Create(&translations).Error; err != nil {
				return err
			}
		}
		product.Translations = translations
		return nil
	})
	return translateWriteError(err)
}

// Update writes the changed columns and, when translations is non-nil,
// replaces the whole translation set. Both happen in one transaction and
// updated_at is always touched.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product, changes map[string]interface{}, translations []models.ProductTranslation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(changes) == 0 {
			changes = map[string]interface{}{}
		}
		changes["updated_at"] = time.Now()
		if err := tx.Model(product).Omit(clause.Associations).Updates(changes).Error; err != nil {
			return err
		}

		if translations == nil {
			return nil
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductTranslation{}).Error; err != nil {
			return err
		}
		for i := range translations {
			translations[i].ProductID = product.ID
		}
		if len(translations) > 0 {
			if err := tx.Create(&translations).Error; err != nil {
				return err
			}
		}
		product.Translations = translations
		return nil
	})
	return translateWriteError(err)
}

// Delete removes the translations and then the product.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductTranslation{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
