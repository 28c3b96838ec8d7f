package sql

import (
	"context"
	"fmt"
	"strconv"

	"report_gen/internal/models"
	"report_gen/internal/report"
)

var _ report.ItemStore = ItemRepository{}

const defaultItemQuery = `SELECT id, name, value FROM items ORDER BY position, row_id`

// ItemRepository reads items from the items table, or from the rows of
// Query when set. A custom query must return id, name and value columns.
type ItemRepository struct {
	DB    *DB
	Query string
}

// ListItems loads all items in report order.
func (r ItemRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	if r.Query != "" {
		return r.listByQuery(ctx)
	}

	rows, err := r.DB.QueryContext(ctx, defaultItemQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		var id string
		if err := rows.Scan(&id, &item.Name, &item.Value); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.ID = models.ItemID(id)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

func (r ItemRepository) listByQuery(ctx context.Context) ([]models.Item, error) {
	if err := ValidateQuery(r.Query); err != nil {
		return nil, err
	}

	rows, err := r.DB.Execute(ctx, r.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	items := make([]models.Item, 0, len(rows))
	for i, row := range rows {
		for _, col := range []string{"id", "name", "value"} {
			if _, ok := row[col]; !ok {
				return nil, fmt.Errorf("item query must return an %q column", col)
			}
		}
		value, err := toFloat(row["value"])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		items = append(items, models.Item{
			ID:    models.ItemID(toString(row["id"])),
			Name:  toString(row["name"]),
			Value: value,
		})
	}
	return items, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return models.FormatNumber(t)
	default:
		return fmt.Sprint(t)
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case []byte:
		return strconv.ParseFloat(string(t), 64)
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("invalid value %v", v)
	}
}
