package policy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const grantExists = "EXISTS (SELECT 1 FROM private_investment_access pia WHERE pia.opportunity_id = investment_opportunities.id AND pia.user_id = ?)"

// OpportunityScope narrows a query on investment_opportunities to the rows the
// viewer may read.
func OpportunityScope(v Viewer) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if v.Audience == AudienceAdmin {
			return db
		}

		open, granted := States(v.Audience)
		if v.UserID == uuid.Nil {
			granted = nil
		}

		switch {
		case len(open) == 0 && len(granted) == 0:
			return db.Where("1 = 0")
		case len(granted) == 0:
			return db.Where("investment_opportunities.visibility IN ?", stateNames(open))
		case len(open) == 0:
			return db.Where("investment_opportunities.visibility IN ? AND "+grantExists, stateNames(granted), v.UserID)
		default:
			return db.Where(
				"investment_opportunities.visibility IN ? OR (investment_opportunities.visibility IN ? AND "+grantExists+")",
				stateNames(open), stateNames(granted), v.UserID,
			)
		}
	}
}
