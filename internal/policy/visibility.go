// Package policy holds the single definition of who may read which
// opportunity and file. The in-process predicates, the gorm query scopes and
// the Postgres row policies are all derived from the rule table below.
package policy

import (
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/google/uuid"
)

type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleInvestor  Role = "user"
	RoleAdmin     Role = "admin"
)

// Caller is the resolved identity behind a request.
type Caller struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Audience selects which row of the rule table applies to a read path.
type Audience string

const (
	AudienceAdmin    Audience = "admin"
	AudienceInvestor Audience = "investor"
	// AudienceFeatured is the anonymous public listing.
	AudienceFeatured Audience = "featured"
	// AudiencePreview is an admin looking at the portal as an investor would.
	AudiencePreview Audience = "preview"
)

// Viewer is the audience a read is evaluated for, plus the user whose grants count.
type Viewer struct {
	Audience Audience
	UserID   uuid.UUID
}

// ViewerFor maps a caller onto the audience of the authenticated read paths.
func ViewerFor(c Caller) Viewer {
	switch c.Role {
	case RoleAdmin:
		return Viewer{Audience: AudienceAdmin, UserID: c.UserID}
	case RoleInvestor:
		return Viewer{Audience: AudienceInvestor, UserID: c.UserID}
	default:
		return Featured()
	}
}

func Featured() Viewer {
	return Viewer{Audience: AudienceFeatured}
}

func Preview() Viewer {
	return Viewer{Audience: AudiencePreview}
}

type rule struct {
	// open states are readable by everyone in the audience.
	open []model.OpportunityVisibility
	// granted states are readable only with an access grant.
	granted []model.OpportunityVisibility
}

var rules = map[Audience]rule{
	AudienceAdmin: {
		open: model.OpportunityVisibilities,
	},
	AudienceInvestor: {
		open:    []model.OpportunityVisibility{model.VisibilityActive, model.VisibilityComingSoon, model.VisibilityConcluded},
		granted: []model.OpportunityVisibility{model.VisibilityPrivate},
	},
	AudienceFeatured: {
		open: []model.OpportunityVisibility{model.VisibilityActive, model.VisibilityComingSoon},
	},
	AudiencePreview: {
		open: []model.OpportunityVisibility{model.VisibilityActive, model.VisibilityConcluded},
	},
}

// States returns the states an audience can read outright and the states it
// can read only with a grant. Unknown audiences read nothing.
func States(a Audience) (open, granted []model.OpportunityVisibility) {
	r, ok := rules[a]
	if !ok {
		return nil, nil
	}
	return r.open, r.granted
}

// Target is the part of an opportunity the visibility rule looks at.
type Target struct {
	Visibility model.OpportunityVisibility
	// Granted is true when the viewer holds an access grant for the opportunity.
	Granted bool
}

// IsVisibleTo is the opportunity read rule. Every read path filters its rows
// through it.
func IsVisibleTo(t Target, v Viewer) bool {
	open, granted := States(v.Audience)
	if contains(open, t.Visibility) {
		return true
	}
	return t.Granted && v.UserID != uuid.Nil && contains(granted, t.Visibility)
}

// RequiresGrant reports whether the visibility of t depends on a grant for v,
// so callers only look grants up when the answer can change.
func RequiresGrant(t model.OpportunityVisibility, v Viewer) bool {
	_, granted := States(v.Audience)
	return contains(granted, t)
}

// FileVisibleTo is the file read rule. parentVisible is the result of
// IsVisibleTo for the owning opportunity; granted is whether the viewer holds a
// file grant, which only matters for specific_users files.
func FileVisibleTo(f model.FileVisibility, parentVisible, granted bool, v Viewer) bool {
	if v.Audience == AudienceAdmin {
		return true
	}

	switch f {
	case model.FileVisibilityAll:
		return true
	case model.FileVisibilityOpportunityViewers:
		return parentVisible
	case model.FileVisibilitySpecificUsers:
		return granted && v.UserID != uuid.Nil
	}
	return false
}

func contains(states []model.OpportunityVisibility, v model.OpportunityVisibility) bool {
	for _, s := range states {
		if s == v {
			return true
		}
	}
	return false
}

func stateNames(states []model.OpportunityVisibility) []string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}
	return names
}
