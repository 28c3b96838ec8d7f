package report

import (
	"slices"

	"report_gen/internal/models"
)

// userValueLimit is the highest item value a USER viewer may see.
const userValueLimit = 500

// VisibleItems returns the items user is allowed to see, in input order.
// Admins see everything, users see items valued up to 500, and everyone
// else, including an absent user, sees nothing. items is never modified.
func VisibleItems(items []models.Item, user *models.User) []models.Item {
	if user == nil || items == nil {
		return []models.Item{}
	}

	switch user.Role {
	case models.RoleAdmin:
		return slices.Clone(items)
	case models.RoleUser:
		visible := make([]models.Item, 0, len(items))
		for _, item := range items {
			if item.Value <= userValueLimit {
				visible = append(visible, item)
			}
		}
		return visible
	default:
		return []models.Item{}
	}
}
