package inventory

import (
	"time"

	"finanzas-backend/internal/models"
)

const day = 24 * time.Hour

// WarrantyRemaining counts whole days left before soldDate+30d, never below
// zero. Unsold products have no warranty.
func WarrantyRemaining(p models.Product, now time.Time) int {
	expires := p.WarrantyExpiresAt()
	if expires.IsZero() {
		return 0
	}
	days := int(expires.Sub(now) / day)
	return max(days, 0)
}

func (m *Manager) WarrantyRemaining(p models.Product) int {
	return WarrantyRemaining(p, m.now())
}
