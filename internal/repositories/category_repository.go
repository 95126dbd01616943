package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/foodcatalog/internal/locale"
	"github.com/example/foodcatalog/internal/models"
)

// CategoryRepository persists categories and their translations.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// localeOrder sorts translation rows in locale.Supported order, unknown codes last.
var localeOrder = func() string {
	var b strings.Builder
	b.WriteString("CASE lang_code")
	for i, code := range locale.Supported {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", code, i)
	}
	fmt.Fprintf(&b, " ELSE %d END, lang_code", len(locale.Supported))
	return b.String()
}()

func orderedCategoryTranslations(db *gorm.DB) *gorm.DB {
	return db.Order(localeOrder)
}

// List returns every category with its translations, oldest first.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Preload("Translations", orderedCategoryTranslations).
		Order("created_at asc").
		Order("id asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByID loads a category with its translations.
func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Preload("Translations", orderedCategoryTranslations).
		First(&category, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// Exists reports whether a category with id exists.
func (r *CategoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NameTaken reports whether name is used in lang by any category other than except.
func (r *CategoryRepository) NameTaken(ctx context.Context, lang, name string, except uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.CategoryTranslation{}).
		Where("lang_code = ? AND name = ?", lang, name)
	if except != uuid.Nil {
		query = query.Where("category_id <> ?", except)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountProducts returns how many products reference the category.
func (r *CategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

// Create inserts the category row and then its translations in one transaction.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category, translations []models.CategoryTranslation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(category).Error; err != nil {
			return err
		}
		for i := range translations {
			translations[i].CategoryID = category.ID
		}
		if len(translations) > 0 {
			if err := tx.Create(&translations).Error; err != nil {
				return err
			}
		}
		category.Translations = translations
		return nil
	})
	return translateWriteError(err)
}

// ReplaceTranslations swaps the full translation set of a category and
// touches its updated_at, atomically.
func (r *CategoryRepository) ReplaceTranslations(ctx context.Context, category *models.Category, translations []models.CategoryTranslation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.CategoryTranslation{}).Error; err != nil {
			return err
		}
		for i := range translations {
			translations[i].CategoryID = category.ID
		}
		if len(translations) > 0 {
			if err := tx.Create(&translations).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(category).Update("updated_at", time.Now()).Error; err != nil {
			return err
		}
		category.Translations = translations
		return nil
	})
	return translateWriteError(err)
}

// Delete removes the translations and then the category.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.CategoryTranslation{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Category{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTranslation
	}
	return err
}
