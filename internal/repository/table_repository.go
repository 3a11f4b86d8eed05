package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/driving-lesson-api/internal/models"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

// tableColumns whitelists the tables and columns reachable through TableRepository.
var tableColumns = map[string][]string{
	"instructors":         strings.Split(instructorColumns, ", "),
	"weekly_availability": strings.Split(availabilityColumns, ", "),
	"block_exceptions":    strings.Split(blockExceptionColumns, ", "),
	"bookings":            strings.Split(bookingColumns, ", "),
}

// TableRepository is a generic row client over the whitelisted tables. Table and column
// names never reach SQL unless they are on the whitelist.
type TableRepository struct {
	db *sqlx.DB
}

// NewTableRepository constructs the repository.
func NewTableRepository(db *sqlx.DB) *TableRepository {
	return &TableRepository{db: db}
}

// Tables describes every browsable table in name order.
func (r *TableRepository) Tables() []models.TableInfo {
	names := make([]string, 0, len(tableColumns))
	for name := range tableColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	infos := make([]models.TableInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, models.TableInfo{Name: name, Columns: append([]string(nil), tableColumns[name]...)})
	}
	return infos
}

// Query returns rows of table whose columns equal the filter values.
func (r *TableRepository) Query(ctx context.Context, table string, filter models.TableFilter) ([]models.TableRow, int, error) {
	columns, err := whitelisted(table)
	if err != nil {
		return nil, 0, err
	}
	where := squirrel.Eq{}
	for column, value := range filter.Equals {
		if !hasColumn(columns, column) {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown column %q for table %s", column, table))
		}
		where[column] = value
	}

	countBuilder := psql.Select("COUNT(*)").From(table)
	builder := psql.Select(columns...).From(table)
	if len(where) > 0 {
		countBuilder = countBuilder.Where(where)
		builder = builder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count %s query: %w", table, err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}

	orderBy := "id"
	if filter.OrderBy != "" {
		column := strings.TrimPrefix(filter.OrderBy, "-")
		if !hasColumn(columns, column) {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("cannot order by %q", filter.OrderBy))
		}
		orderBy = column
		if strings.HasPrefix(filter.OrderBy, "-") {
			orderBy += " DESC"
		}
	}
	page, size := normalizePage(filter.Page, filter.PageSize)
	query, args, err := builder.OrderBy(orderBy).Limit(uint64(size)).Offset(uint64((page - 1) * size)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query %s: %w", table, err)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", table, err)
	}
	return result, total, nil
}

// Insert writes one row and returns it as stored.
func (r *TableRepository) Insert(ctx context.Context, table string, row models.TableRow) (models.TableRow, error) {
	columns, err := whitelisted(table)
	if err != nil {
		return nil, err
	}
	names, values, err := rowValues(table, columns, row)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Insert(table).Columns(names...).Values(values...).
		Suffix("RETURNING " + strings.Join(columns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert %s: %w", table, err)
	}
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, conflictOr(fmt.Errorf("insert %s: %w", table, err), fmt.Sprintf("%s row rejected by storage", table))
	}
	defer rows.Close()

	stored, err := scanRows(rows)
	if err != nil {
		return nil, conflictOr(fmt.Errorf("scan inserted %s: %w", table, err), fmt.Sprintf("%s row rejected by storage", table))
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("insert %s returned no row", table)
	}
	return stored[0], nil
}

// Upsert writes rows, updating the non-key columns of rows that collide on conflictKey.
// All rows must carry the same columns.
func (r *TableRepository) Upsert(ctx context.Context, table string, rows []models.TableRow, conflictKey []string) ([]models.TableRow, error) {
	columns, err := whitelisted(table)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.TableRow{}, nil
	}
	if len(conflictKey) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "conflict key is required")
	}
	for _, key := range conflictKey {
		if !hasColumn(columns, key) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown conflict column %q", key))
		}
	}

	names, _, err := rowValues(table, columns, rows[0])
	if err != nil {
		return nil, err
	}
	builder := psql.Insert(table).Columns(names...)
	for _, row := range rows {
		rowNames, values, err := rowValues(table, columns, row)
		if err != nil {
			return nil, err
		}
		if strings.Join(rowNames, ",") != strings.Join(names, ",") {
			return nil, appErrors.Clone(appErrors.ErrValidation, "all rows must carry the same columns")
		}
		builder = builder.Values(values...)
	}

	var updates []string
	for _, name := range names {
		if !hasColumn(conflictKey, name) {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
		}
	}
	suffix := fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(conflictKey, ", "))
	if len(updates) > 0 {
		suffix = fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(conflictKey, ", "), strings.Join(updates, ", "))
	}
	query, args, err := builder.Suffix(suffix + " RETURNING " + strings.Join(columns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert %s: %w", table, err)
	}

	result, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, conflictOr(fmt.Errorf("upsert %s: %w", table, err), fmt.Sprintf("%s rows rejected by storage", table))
	}
	defer result.Close()
	return scanRows(result)
}

func whitelisted(table string) ([]string, error) {
	columns, ok := tableColumns[table]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("table %q is not browsable", table))
	}
	return columns, nil
}

func hasColumn(columns []string, column string) bool {
	for _, c := range columns {
		if c == column {
			return true
		}
	}
	return false
}

// rowValues returns the row's columns in whitelist order with their values.
func rowValues(table string, columns []string, row models.TableRow) ([]string, []interface{}, error) {
	for column := range row {
		if !hasColumn(columns, column) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown column %q for table %s", column, table))
		}
	}
	names := make([]string, 0, len(row))
	values := make([]interface{}, 0, len(row))
	for _, column := range columns {
		if value, ok := row[column]; ok {
			if list, isList := value.([]interface{}); isList {
				value = pq.Array(list)
			}
			names = append(names, column)
			values = append(values, value)
		}
	}
	if len(names) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "row has no columns")
	}
	return names, values, nil
}

func scanRows(rows *sqlx.Rows) ([]models.TableRow, error) {
	result := make([]models.TableRow, 0)
	for rows.Next() {
		raw := make(map[string]interface{})
		if err := rows.MapScan(raw); err != nil {
			return nil, err
		}
		row := make(models.TableRow, len(raw))
		for key, value := range raw {
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row[key] = value
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
