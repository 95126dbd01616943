package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/cache"
	"github.com/example/foodcatalog/internal/models"
	"github.com/example/foodcatalog/internal/repositories"
	"github.com/example/foodcatalog/internal/validation"
)

const (
	categoriesCacheKey   = "categories:all"
	categoriesVersionKey = "categories:version"
	// must outlive CACHE_TTL_SECONDS
	categoriesVersionTTL = 30 * 24 * time.Hour
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse is returned when deleting a category that products still reference.
	ErrCategoryInUse = errors.New("category still has products")
)

// CategoryService implements category use cases on top of the repository.
type CategoryService struct {
	repo   *repositories.CategoryRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCategoryService constructs CategoryService. cache may be nil.
func NewCategoryService(repo *repositories.CategoryRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, cache: c, ttl: ttl, logger: logger}
}

// List returns all categories, served from cache when possible.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	key, cached := s.listKey(ctx)
	if cached {
		var categories []models.Category
		hit, err := s.cache.Get(ctx, key, &categories)
		if err != nil {
			s.logger.Warn("category cache read failed", zap.Error(err))
		} else if hit {
			return categories, nil
		}
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	if cached {
		s.storeList(ctx, key, categories)
	}
	return categories, nil
}

// listKey returns the cache key of the current category list generation.
// A list read before a write is stored under the generation it was read in,
// which invalidate has already retired.
func (s *CategoryService) listKey(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	var version string
	hit, err := s.cache.Get(ctx, categoriesVersionKey, &version)
	if err != nil {
		s.logger.Warn("category cache read failed", zap.Error(err))
		return "", false
	}
	if !hit || version == "" {
		version = uuid.NewString()
		if err := s.cache.Set(ctx, categoriesVersionKey, version, categoriesVersionTTL); err != nil {
			s.logger.Warn("category cache write failed", zap.Error(err))
			return "", false
		}
	}
	return categoriesCacheKey + ":" + version, true
}

func (s *CategoryService) storeList(ctx context.Context, key string, categories []models.Category) {
	if err := s.cache.Set(ctx, key, categories, s.ttl); err != nil {
		s.logger.Warn("category cache write failed", zap.Error(err))
	}
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find category")
	}
	return category, nil
}

// Create validates the translations and stores a new category with them.
func (s *CategoryService) Create(ctx context.Context, inputs []TranslationInput) (*models.Category, error) {
	translations, err := s.prepare(ctx, inputs, uuid.Nil)
	if err != nil {
		return nil, err
	}

	category := &models.Category{}
	if err := s.repo.Create(ctx, category, translations); err != nil {
		return nil, s.writeError(ctx, err, translations, uuid.Nil, "create category")
	}
	s.invalidate(ctx)

	return category, nil
}

// Update replaces the full translation set of the category with id.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, inputs []TranslationInput) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	translations, err := s.prepare(ctx, inputs, category.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceTranslations(ctx, category, translations); err != nil {
		return nil, s.writeError(ctx, err, translations, category.ID, "update category")
	}
	s.invalidate(ctx)

	return s.Get(ctx, id)
}

// Delete removes a category that no product references.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "find category")
	}
	if !exists {
		return ErrCategoryNotFound
	}

	products, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return errors.Wrap(err, "count category products")
	}
	if products > 0 {
		return ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return errors.Wrap(err, "delete category")
	}
	s.invalidate(ctx)

	return nil
}

// Exists reports whether a category with id exists.
func (s *CategoryService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	exists, err := s.repo.Exists(ctx, id)
	return exists, errors.Wrap(err, "find category")
}

func (s *CategoryService) prepare(ctx context.Context, inputs []TranslationInput, self uuid.UUID) ([]models.CategoryTranslation, error) {
	normalized, errs := normalizeTranslations(inputs)
	if !errs.Empty() {
		return nil, errs
	}

	errs = validation.New()
	translations := make([]models.CategoryTranslation, 0, len(normalized))
	for _, in := range normalized {
		taken, err := s.repo.NameTaken(ctx, in.LangCode, in.Name, self)
		if err != nil {
			return nil, errors.Wrap(err, "check category name")
		}
		if taken {
			errs.Add("name."+in.LangCode, takenMessage(in.LangCode))
			continue
		}
		translations = append(translations, models.CategoryTranslation{LangCode: in.LangCode, Name: in.Name})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return translations, nil
}

// writeError reports a unique index violation that raced past the precheck
// the same way the precheck would.
func (s *CategoryService) writeError(ctx context.Context, err error, translations []models.CategoryTranslation, self uuid.UUID, action string) error {
	if !errors.Is(err, repositories.ErrDuplicateTranslation) {
		return errors.Wrap(err, action)
	}
	names := make([]localizedName, 0, len(translations))
	for _, t := range translations {
		names = append(names, localizedName{lang: t.LangCode, name: t.Name})
	}
	return duplicateNameError(ctx, names, self, s.repo.NameTaken)
}

// invalidate starts a new list generation and drops the current one.
func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	var previous string
	if _, err := s.cache.Get(ctx, categoriesVersionKey, &previous); err != nil {
		s.logger.Warn("category cache read failed", zap.Error(err))
	}
	if err := s.cache.Set(ctx, categoriesVersionKey, uuid.NewString(), categoriesVersionTTL); err != nil {
		s.logger.Warn("category cache invalidation failed", zap.Error(err))
		// without a new generation the old list must not survive
		if err := s.cache.Delete(ctx, categoriesVersionKey); err != nil {
			s.logger.Warn("category cache invalidation failed", zap.Error(err))
		}
	}
	if previous != "" {
		if err := s.cache.Delete(ctx, categoriesCacheKey+":"+previous); err != nil {
			s.logger.Warn("category cache invalidation failed", zap.Error(err))
		}
	}
}
