package handler

import (
	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/ports"
)

func toProductInput(req productRequest) ports.ProductInput {
	return ports.ProductInput{
		ID:      req.ID,
		Name:    req.Name,
		Price:   req.Price,
		Stock:   req.Stock,
		Image:   req.Image,
		Version: req.Version,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Image:     p.Image,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductResponses(products []*domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}
