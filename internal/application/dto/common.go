package dto

import (
	"github.com/jhoicas/Concesionario-api/internal/domain"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
)

// Pagination metadatos de página en listados.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination calcula totalPages = ceil(total/limit).
func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

// ListResponse respuesta de GET /api/v1/{recurso}.
type ListResponse struct {
	Success    bool            `json:"success"`
	Data       []entity.Record `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// RecordResponse respuesta con un solo registro.
type RecordResponse struct {
	Success bool          `json:"success"`
	Data    entity.Record `json:"data"`
}

// DeleteResponse respuesta de DELETE (borrado físico o desactivación).
type DeleteResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	SoftDeleted bool   `json:"softDeleted,omitempty"`
}

// ResourcesResponse nombres de recursos registrados.
type ResourcesResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Code    string              `json:"code"`
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}
