package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/foodcatalog/internal/locale"
	"github.com/example/foodcatalog/internal/models"
)

type translationResponse struct {
	LangCode    string  `json:"lang_code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type categoryResponse struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Translations []translationResponse `json:"translations"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type productResponse struct {
	ID           uuid.UUID             `json:"id"`
	CategoryID   uuid.UUID             `json:"category_id"`
	CategoryName string                `json:"category_name"`
	Name         string                `json:"name"`
	Description  *string               `json:"description"`
	Price        int64                 `json:"price"`
	IsAvailable  bool                  `json:"is_available"`
	Image        *string               `json:"image"`
	Translations []translationResponse `json:"translations"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Login     string    `json:"login"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type clientResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate *string   `json:"birth_date"`
	Gender    string    `json:"gender"`
	Login     string    `json:"login"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// presenter shapes models for one request locale.
type presenter struct {
	loc      string
	fallback string
	imageURL func(string) string
}

func (p presenter) category(category *models.Category) categoryResponse {
	resp := categoryResponse{
		ID:           category.ID,
		Translations: make([]translationResponse, 0, len(category.Translations)),
		CreatedAt:    category.CreatedAt,
		UpdatedAt:    category.UpdatedAt,
	}
	for _, t := range category.Translations {
		resp.Translations = append(resp.Translations, translationResponse{LangCode: t.LangCode, Name: t.Name})
	}
	if t, ok := locale.Pick(category.Translations, categoryLang, p.loc, p.fallback); ok {
		resp.Name = t.Name
	}
	return resp
}

func (p presenter) categories(categories []models.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, p.category(&categories[i]))
	}
	return out
}

func (p presenter) product(product *models.Product) productResponse {
	resp := productResponse{
		ID:           product.ID,
		CategoryID:   product.CategoryID,
		Price:        product.Price,
		IsAvailable:  product.IsAvailable,
		Translations: make([]translationResponse, 0, len(product.Translations)),
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
	for _, t := range product.Translations {
		resp.Translations = append(resp.Translations, translationResponse{
			LangCode:    t.LangCode,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	if t, ok := locale.Pick(product.Translations, productLang, p.loc, p.fallback); ok {
		resp.Name = t.Name
		resp.Description = t.Description
	}
	if product.Category != nil {
		if t, ok := locale.Pick(product.Category.Translations, categoryLang, p.loc, p.fallback); ok {
			resp.CategoryName = t.Name
		}
	}
	if product.Image != "" && p.imageURL != nil {
		url := p.imageURL(product.Image)
		resp.Image = &url
	}
	return resp
}

func (p presenter) products(products []models.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, p.product(&products[i]))
	}
	return out
}

func presentUser(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Login:     user.Login,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func presentClients(clients []models.Client) []clientResponse {
	out := make([]clientResponse, 0, len(clients))
	for _, client := range clients {
		resp := clientResponse{
			ID:        client.ID,
			FirstName: client.FirstName,
			LastName:  client.LastName,
			Gender:    client.Gender,
			CreatedAt: client.CreatedAt,
		}
		if client.BirthDate != nil {
			date := client.BirthDate.Format("2006-01-02")
			resp.BirthDate = &date
		}
		if client.User != nil {
			resp.Login = client.User.Login
			resp.Phone = client.User.Phone
		}
		out = append(out, resp)
	}
	return out
}

func categoryLang(t models.CategoryTranslation) string { return t.LangCode }

func productLang(t models.ProductTranslation) string { return t.LangCode }
