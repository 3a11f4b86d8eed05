package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/models"
)

type tableClient interface {
	Tables() []models.TableInfo
	Query(ctx context.Context, table string, filter models.TableFilter) ([]models.TableRow, int, error)
	Insert(ctx context.Context, table string, row models.TableRow) (models.TableRow, error)
	Upsert(ctx context.Context, table string, rows []models.TableRow, conflictKey []string) ([]models.TableRow, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// AdminTableService lets administrators browse and patch whitelisted tables.
type AdminTableService struct {
	tables    tableClient
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminTableService constructs an AdminTableService.
func NewAdminTableService(tables tableClient, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AdminTableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminTableService{tables: tables, cache: cache, validator: validate, logger: logger}
}

// Tables lists the browsable tables.
func (s *AdminTableService) Tables() []models.TableInfo {
	return s.tables.Tables()
}

// Query pages rows of a table.
func (s *AdminTableService) Query(ctx context.Context, table string, query dto.TableQuery) (*dto.TablePage, error) {
	page, size := pageBounds(query.Page, query.PageSize)
	equals := make(map[string]interface{}, len(query.Filters))
	for column, value := range query.Filters {
		equals[column] = value
	}
	rows, total, err := s.tables.Query(ctx, table, models.TableFilter{
		Equals:   equals,
		OrderBy:  query.OrderBy,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return nil, typedOrInternal(err, "failed to query table")
	}
	if rows == nil {
		rows = []models.TableRow{}
	}
	return &dto.TablePage{Table: table, Rows: rows, Total: total, Page: page, PageSize: size}, nil
}

// Insert adds one row.
func (s *AdminTableService) Insert(ctx context.Context, actorID, table string, req dto.TableInsertRequest) (models.TableRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid row payload")
	}
	row, err := s.tables.Insert(ctx, table, req.Row)
	if err != nil {
		return nil, typedOrInternal(err, "failed to insert row")
	}
	s.afterWrite(ctx, actorID, table, 1)
	return row, nil
}

// Upsert inserts rows or updates the ones colliding on the conflict key.
func (s *AdminTableService) Upsert(ctx context.Context, actorID, table string, req dto.TableUpsertRequest) ([]models.TableRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid upsert payload")
	}
	rows, err := s.tables.Upsert(ctx, table, req.Rows, req.ConflictKey)
	if err != nil {
		return nil, typedOrInternal(err, "failed to upsert rows")
	}
	s.afterWrite(ctx, actorID, table, len(rows))
	return rows, nil
}

// afterWrite drops cached availability, since raw writes can touch any instructor.
func (s *AdminTableService) afterWrite(ctx context.Context, actorID, table string, count int) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, CacheKey("availability", "*"))
	}
	s.logger.Info("admin table write", zap.String("actor_id", actorID), zap.String("table", table), zap.Int("rows", count))
}

func pageBounds(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
