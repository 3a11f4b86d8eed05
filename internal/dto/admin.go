package dto

import "github.com/noah-isme/driving-lesson-api/internal/models"

// TableQuery pages through a whitelisted table. Filters match columns exactly.
type TableQuery struct {
	Filters  map[string]string
	OrderBy  string
	Page     int
	PageSize int
}

// TablePage is one page of raw rows.
type TablePage struct {
	Table    string            `json:"table"`
	Rows     []models.TableRow `json:"rows"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// TableInsertRequest inserts a single row.
type TableInsertRequest struct {
	Row models.TableRow `json:"row" validate:"required"`
}

// TableUpsertRequest inserts rows or updates them when ConflictKey already exists.
type TableUpsertRequest struct {
	Rows        []models.TableRow `json:"rows" validate:"required,min=1"`
	ConflictKey []string          `json:"conflict_key" validate:"required,min=1,dive,required"`
}
