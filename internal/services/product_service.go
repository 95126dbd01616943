package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/example/foodcatalog/internal/models"
	"github.com/example/foodcatalog/internal/repositories"
	"github.com/example/foodcatalog/internal/storage"
	"github.com/example/foodcatalog/internal/utils"
	"github.com/example/foodcatalog/internal/validation"
)

const (
	productImageDir   = "products"
	invalidCategoryID = "The selected category id is invalid."
)

var ErrProductNotFound = errors.New("product not found")

// ImageUpload is an uploaded file as received by the handler.
type ImageUpload struct {
	File io.ReadSeeker
	Size int64
}

// ProductInput carries raw form values. A nil field was not submitted.
// Translations is nil when the request carried no translation fields.
type ProductInput struct {
	CategoryID   *string
	Price        *string
	IsAvailable  *string
	Translations []TranslationInput
	Image        *ImageUpload
}

// ProductQuery holds the raw listing query string.
type ProductQuery struct {
	CategoryID  string `query:"category_id" validate:"omitempty,uuid"`
	IsAvailable string `query:"is_available" validate:"omitempty,oneof=true false 1 0"`
	Search      string `query:"search" validate:"omitempty,max=255"`
	MinPrice    string `query:"min_price" validate:"omitempty,number"`
	MaxPrice    string `query:"max_price" validate:"omitempty,number"`
	SortBy      string `query:"sort_by" validate:"omitempty,oneof=created_at price category_name"`
	SortOrder   string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
	Page        string `query:"page" validate:"omitempty,number"`
	PerPage     string `query:"per_page" validate:"omitempty,number"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products    []models.Product
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int64
}

// ProductService implements product use cases and owns the image lifecycle.
type ProductService struct {
	repo         *repositories.ProductRepository
	categories   *repositories.CategoryRepository
	storage      storage.Storage
	maxImageSize int64
	logger       *zap.Logger
}

func NewProductService(
	repo *repositories.ProductRepository,
	categories *repositories.CategoryRepository,
	store storage.Storage,
	maxImageSize int64,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:         repo,
		categories:   categories,
		storage:      store,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

// List validates the query and returns the matching page.
func (s *ProductService) List(ctx context.Context, query ProductQuery, loc string) (*ProductPage, error) {
	filters, err := s.parseQuery(ctx, query, loc)
	if err != nil {
		return nil, err
	}

	products, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	return &ProductPage{
		Products:    products,
		CurrentPage: filters.Page,
		LastPage:    utils.TotalPages(total, filters.PerPage),
		PerPage:     filters.PerPage,
		Total:       total,
	}, nil
}

func (s *ProductService) parseQuery(ctx context.Context, query ProductQuery, loc string) (repositories.ProductFilters, error) {
	filters := repositories.ProductFilters{
		Search:    strings.TrimSpace(query.Search),
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Locale:    loc,
		Page:      1,
		PerPage:   utils.DefaultPerPage,
	}

	errs := validation.Struct(query)
	if !errs.Empty() {
		return filters, errs
	}

	if query.CategoryID != "" {
		id := uuid.MustParse(query.CategoryID)
		exists, err := s.categories.Exists(ctx, id)
		if err != nil {
			return filters, errors.Wrap(err, "find category")
		}
		if !exists {
			errs.Add("category_id", invalidCategoryID)
		}
		filters.CategoryID = &id
	}

	if query.IsAvailable != "" {
		available := cast.ToBool(query.IsAvailable)
		filters.IsAvailable = &available
	}

	if query.MinPrice != "" {
		value, err := strconv.ParseInt(query.MinPrice, 10, 64)
		if err != nil {
			errs.Add("min_price", "The min price must be an integer.")
		}
		filters.MinPrice = &value
	}
	if query.MaxPrice != "" {
		value, err := strconv.ParseInt(query.MaxPrice, 10, 64)
		if err != nil {
			errs.Add("max_price", "The max price must be an integer.")
		}
		filters.MaxPrice = &value
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && !errs.Has("min_price") && !errs.Has("max_price") &&
		*filters.MaxPrice < *filters.MinPrice {
		errs.Add("max_price", "The max price must be greater than or equal to min price.")
	}

	if query.Page != "" {
		filters.Page = cast.ToInt(strings.TrimLeft(query.Page, "0"))
		if filters.Page < 1 {
			errs.Add("page", "The page must be at least 1.")
		}
	}
	if query.PerPage != "" {
		filters.PerPage = cast.ToInt(strings.TrimLeft(query.PerPage, "0"))
		if filters.PerPage < 1 || filters.PerPage > utils.MaxPerPage {
			errs.Add("per_page", fmt.Sprintf("The per page must be between 1 and %d.", utils.MaxPerPage))
		}
	}

	return filters, errs.Err()
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find product")
	}
	return product, nil
}

// Create validates in, stores the image and then the product row. The
// stored image is removed again when the row cannot be written.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	errs := validation.New()

	if in.CategoryID == nil || strings.TrimSpace(*in.CategoryID) == "" {
		errs.Add("category_id", "The category id field is required.")
	}
	if in.Price == nil || strings.TrimSpace(*in.Price) == "" {
		errs.Add("price", "The price field is required.")
	}
	if in.Image == nil {
		errs.Add("image", "The image field is required.")
	}
	if in.Translations == nil {
		in.Translations = []TranslationInput{}
	}

	fields, translations, ext, err := s.validate(ctx, in, uuid.Nil, errs)
	if err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	key, err := s.storage.Save(ctx, productImageDir, ext, in.Image.File)
	if err != nil {
		return nil, errors.Wrap(err, "store product image")
	}

	product := &models.Product{
		CategoryID:  fields.categoryID,
		Price:       fields.price,
		IsAvailable: true,
		Image:       key,
	}
	if fields.isAvailable != nil {
		product.IsAvailable = *fields.isAvailable
	}

	if err := s.repo.Create(ctx, product, translations); err != nil {
		s.removeImage(ctx, key)
		return nil, s.writeError(ctx, err, translations, uuid.Nil, "create product")
	}

	return s.Get(ctx, product.ID)
}

// Update applies the submitted fields. A new image replaces the old one only
// after the row update committed.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	errs := validation.New()
	fields, translations, ext, err := s.validate(ctx, in, product.ID, errs)
	if err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.CategoryID != nil {
		changes["category_id"] = fields.categoryID
	}
	if in.Price != nil {
		changes["price"] = fields.price
	}
	if fields.isAvailable != nil {
		changes["is_available"] = *fields.isAvailable
	}

	oldImage := product.Image
	newImage := ""
	if in.Image != nil {
		newImage, err = s.storage.Save(ctx, productImageDir, ext, in.Image.File)
		if err != nil {
			return nil, errors.Wrap(err, "store product image")
		}
		changes["image"] = newImage
	}

	if err := s.repo.Update(ctx, product, changes, translations); err != nil {
		if newImage != "" {
			s.removeImage(ctx, newImage)
		}
		return nil, s.writeError(ctx, err, translations, product.ID, "update product")
	}

	if newImage != "" && oldImage != "" && oldImage != newImage {
		s.removeImage(ctx, oldImage)
	}

	return s.Get(ctx, id)
}

// Delete removes the product and then, best effort, its image.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return errors.Wrap(err, "delete product")
	}

	s.removeImage(ctx, product.Image)
	return nil
}

// ImageURL returns the public URL of a stored image key.
func (s *ProductService) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.URL(key)
}

type productFields struct {
	categoryID  uuid.UUID
	price       int64
	isAvailable *bool
}

// validate checks every submitted field and records failures in errs. The
// returned translations are nil when none were submitted. A non-nil error
// means a lookup failed and errs is incomplete.
func (s *ProductService) validate(ctx context.Context, in ProductInput, self uuid.UUID, errs *validation.Errors) (productFields, []models.ProductTranslation, string, error) {
	var fields productFields

	if in.CategoryID != nil && !errs.Has("category_id") {
		id, err := uuid.Parse(strings.TrimSpace(*in.CategoryID))
		if err != nil {
			errs.Add("category_id", invalidCategoryID)
		} else if exists, err := s.categories.Exists(ctx, id); err != nil {
			return fields, nil, "", errors.Wrap(err, "find category")
		} else if !exists {
			errs.Add("category_id", invalidCategoryID)
		} else {
			fields.categoryID = id
		}
	}

	if in.Price != nil && !errs.Has("price") {
		price, err := strconv.ParseInt(strings.TrimSpace(*in.Price), 10, 64)
		switch {
		case err != nil:
			errs.Add("price", "The price must be an integer.")
		case price < 0:
			errs.Add("price", "The price must be at least 0.")
		default:
			fields.price = price
		}
	}

	if in.IsAvailable != nil && strings.TrimSpace(*in.IsAvailable) != "" {
		available, err := parseBool(*in.IsAvailable)
		if err != nil {
			errs.Add("is_available", "The is available field must be true or false.")
		} else {
			fields.isAvailable = &available
		}
	}

	var ext string
	if in.Image != nil {
		var err error
		ext, err = storage.DetectImage(in.Image.File, in.Image.Size, s.maxImageSize)
		switch {
		case errors.Is(err, storage.ErrImageTooLarge):
			errs.Add("image", fmt.Sprintf("The image may not be greater than %d kilobytes.", s.maxImageSize/1024))
		case err != nil:
			errs.Add("image", "The image must be a file of type: jpeg, png, jpg, gif.")
		}
	}

	if in.Translations == nil {
		return fields, nil, ext, nil
	}

	normalized, terrs := normalizeTranslations(in.Translations)
	if !terrs.Empty() {
		errs.Merge(terrs)
		return fields, nil, ext, nil
	}

	translations := make([]models.ProductTranslation, 0, len(normalized))
	for _, t := range normalized {
		taken, err := s.repo.NameTaken(ctx, t.LangCode, t.Name, self)
		if err != nil {
			return fields, nil, "", errors.Wrap(err, "check product name")
		}
		if taken {
			errs.Add("name."+t.LangCode, takenMessage(t.LangCode))
			continue
		}
		translations = append(translations, models.ProductTranslation{
			LangCode:    t.LangCode,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return fields, translations, ext, nil
}

func (s *ProductService) writeError(ctx context.Context, err error, translations []models.ProductTranslation, self uuid.UUID, action string) error {
	if !errors.Is(err, repositories.ErrDuplicateTranslation) {
		return errors.Wrap(err, action)
	}
	names := make([]localizedName, 0, len(translations))
	for _, t := range translations {
		names = append(names, localizedName{lang: t.LangCode, name: t.Name})
	}
	return duplicateNameError(ctx, names, self, s.repo.NameTaken)
}

func (s *ProductService) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("product image cleanup failed", zap.String("image", key), zap.Error(err))
	}
}

// parseBool accepts the boolean spellings HTML forms and JSON clients send.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	}
	return cast.ToBoolE(value)
}
