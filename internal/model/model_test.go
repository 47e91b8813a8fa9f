package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpportunityInvestURL(t *testing.T) {
	url := "https://crowd.example.com/villa-a"

	tests := []struct {
		name       string
		visibility OpportunityVisibility
		external   *string
		want       string
	}{
		{"active with url", VisibilityActive, &url, url},
		{"active without url", VisibilityActive, nil, ""},
		{"coming soon with url", VisibilityComingSoon, &url, ""},
		{"concluded with url", VisibilityConcluded, &url, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Opportunity{Visibility: tt.visibility, ExternalURL: tt.external}
			assert.Equal(t, tt.want, o.InvestURL())
		})
	}
}

func TestFinancialInfoContent(t *testing.T) {
	info := FinancialInfo{
		EquityDistributed: 12.5,
		IRRExpected:       9,
		FundraisingGoal:   2500000,
		DurationMonths:    36,
		PreMoneyValuation: 10000000,
	}

	content, err := info.Content()
	require.NoError(t, err)
	assert.JSONEq(t, `{"equity_distributed":12.5,"irr_expected":9,"fundraising_goal":2500000,"duration_months":36,"pre_money_valuation":10000000}`, content)

	parsed, err := ParseFinancialInfo(content)
	require.NoError(t, err)
	assert.Equal(t, info, parsed)

	_, err = ParseFinancialInfo("not json")
	assert.Error(t, err)
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, VisibilityComingSoon.Valid())
	assert.False(t, OpportunityVisibility("archived").Valid())
	assert.True(t, SectionStudio.Valid())
	assert.False(t, SectionType("gallery").Valid())
	assert.True(t, FileVisibilitySpecificUsers.Valid())
	assert.False(t, FileVisibility("public").Valid())
}
