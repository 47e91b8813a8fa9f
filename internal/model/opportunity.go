// internal/model/opportunity.go
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OpportunityVisibility string

const (
	VisibilityDraft      OpportunityVisibility = "draft"
	VisibilityPrivate    OpportunityVisibility = "private"
	VisibilityComingSoon OpportunityVisibility = "coming_soon"
	VisibilityActive     OpportunityVisibility = "active"
	VisibilityConcluded  OpportunityVisibility = "concluded"
)

// OpportunityVisibilities lists every opportunity state in lifecycle order.
var OpportunityVisibilities = []OpportunityVisibility{
	VisibilityDraft,
	VisibilityPrivate,
	VisibilityComingSoon,
	VisibilityActive,
	VisibilityConcluded,
}

func (v OpportunityVisibility) Valid() bool {
	for _, known := range OpportunityVisibilities {
		if v == known {
			return true
		}
	}
	return false
}

type Location struct {
	City   string `json:"city"`
	Region string `json:"region"`
}

type Opportunity struct {
	ID               uuid.UUID                    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AdminID          uuid.UUID                    `gorm:"type:uuid;not null" json:"admin_id" szlr:"scope:admin"`
	Title            string                       `gorm:"type:text;not null" json:"title"`
	Location         datatypes.JSONType[Location] `gorm:"type:jsonb;not null" json:"location"`
	Visibility       OpportunityVisibility        `gorm:"type:opportunity_visibility;not null;default:'draft'" json:"visibility"`
	ExternalURL      *string                      `gorm:"type:text" json:"external_url"`
	ExternalPlatform *string                      `gorm:"type:text" json:"external_platform"`
	Version          int                          `gorm:"not null;default:1" json:"version" szlr:"scope:admin"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`

	Sections []Section `gorm:"foreignKey:OpportunityID;constraint:OnDelete:CASCADE" json:"sections"`
}

func (Opportunity) TableName() string {
	return "investment_opportunities"
}

// BeforeSave hook for Opportunity
func (o *Opportunity) BeforeSave(tx *gorm.DB) error {
	if o.Visibility == "" {
		o.Visibility = VisibilityDraft
	}
	if !o.Visibility.Valid() {
		return fmt.Errorf("invalid opportunity visibility: %s", o.Visibility)
	}
	return nil
}

// BeforeCreate hook for Opportunity
func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Version == 0 {
		o.Version = 1
	}
	return nil
}

// InvestURL is the external "Invest Now" target, only offered once the
// opportunity is active.
func (o *Opportunity) InvestURL() string {
	if o.Visibility != VisibilityActive || o.ExternalURL == nil {
		return ""
	}
	return *o.ExternalURL
}

// SerializerExtras adds the computed invest_url to API projections.
func (o Opportunity) SerializerExtras(scopes []string) map[string]any {
	if url := o.InvestURL(); url != "" {
		return map[string]any{"invest_url": url}
	}
	return map[string]any{"invest_url": nil}
}

// Section returns the section of the given type, or nil.
func (o *Opportunity) Section(sectionType SectionType) *Section {
	for i := range o.Sections {
		if o.Sections[i].SectionType == sectionType {
			return &o.Sections[i]
		}
	}
	return nil
}

type SectionType string

const (
	SectionDescription SectionType = "description"
	SectionDevelopment SectionType = "development"
	SectionPartner     SectionType = "partner"
	SectionBrand       SectionType = "brand"
	SectionManagement  SectionType = "management"
	SectionStudio      SectionType = "studio"
	SectionFinancial   SectionType = "financial"
)

var SectionTypes = []SectionType{
	SectionDescription,
	SectionDevelopment,
	SectionPartner,
	SectionBrand,
	SectionManagement,
	SectionStudio,
	SectionFinancial,
}

func (t SectionType) Valid() bool {
	for _, known := range SectionTypes {
		if t == known {
			return true
		}
	}
	return false
}

const DefaultFinancialTitle = "Financial Information"

type Section struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OpportunityID uuid.UUID   `gorm:"type:uuid;not null" json:"opportunity_id"`
	SectionType   SectionType `gorm:"type:section_type;not null" json:"section_type"`
	CustomTitle   *string     `gorm:"type:text" json:"custom_title"`
	CustomContent *string     `gorm:"type:text" json:"custom_content"`
	OrderNumber   int         `gorm:"not null;default:0" json:"order_number"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Images []Image `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"images"`
}

func (Section) TableName() string {
	return "sections"
}

// BeforeCreate hook for Section
func (s *Section) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if !s.SectionType.Valid() {
		return fmt.Errorf("invalid section type: %s", s.SectionType)
	}
	return nil
}

type Image struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SectionID   uuid.UUID `gorm:"type:uuid;not null" json:"section_id"`
	ImageURL    string    `gorm:"type:text;not null" json:"image_url"`
	Caption     *string   `gorm:"type:text" json:"caption"`
	Details     *string   `gorm:"type:text" json:"details"`
	OrderNumber int       `gorm:"not null;default:0" json:"order_number"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Image) TableName() string {
	return "images"
}

// BeforeCreate hook for Image
func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// FinancialInfo is the structured content of a financial section.
type FinancialInfo struct {
	EquityDistributed float64 `json:"equity_distributed"`
	IRRExpected       float64 `json:"irr_expected"`
	FundraisingGoal   float64 `json:"fundraising_goal"`
	DurationMonths    int     `json:"duration_months"`
	PreMoneyValuation float64 `json:"pre_money_valuation"`
}

// Content renders the info the way it is stored in custom_content.
func (f FinancialInfo) Content() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encoding financial info: %w", err)
	}
	return string(b), nil
}

// ParseFinancialInfo decodes the custom_content of a financial section.
func ParseFinancialInfo(content string) (FinancialInfo, error) {
	var f FinancialInfo
	if err := json.Unmarshal([]byte(content), &f); err != nil {
		return FinancialInfo{}, fmt.Errorf("decoding financial info: %w", err)
	}
	return f, nil
}
