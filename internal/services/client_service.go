package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/example/foodcatalog/internal/models"
	"github.com/example/foodcatalog/internal/repositories"
	"github.com/example/foodcatalog/internal/utils"
)

// ClientService lists storefront clients.
type ClientService struct {
	repo *repositories.ClientRepository
}

func NewClientService(repo *repositories.ClientRepository) *ClientService {
	return &ClientService{repo: repo}
}

// List returns one page of clients and the total count.
func (s *ClientService) List(ctx context.Context, pg utils.Pagination) ([]models.Client, int64, error) {
	clients, total, err := s.repo.List(ctx, pg.Offset, pg.PerPage)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list clients")
	}
	return clients, total, nil
}
