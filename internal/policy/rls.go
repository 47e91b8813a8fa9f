package policy

import (
	"fmt"
	"strings"

	"github.com/dangerclosesec/dealroom/internal/model"
)

// Database roles the row policies are attached to. The application connects as
// the table owner and is not subject to them; they govern direct read access
// such as reporting connections.
const (
	InvestorDBRole = "dealroom_investor"
	PublicDBRole   = "dealroom_public"

	// CurrentUserSetting is the session setting an investor connection sets to
	// its identity id before reading.
	CurrentUserSetting = "app.user_id"
)

// RowPolicies renders the Postgres row-level security statements for the
// investor and featured audiences. Re-running them is safe.
func RowPolicies() []string {
	currentUser := fmt.Sprintf("NULLIF(current_setting('%s', true), '')::uuid", CurrentUserSetting)

	investorOpen, investorGranted := States(AudienceInvestor)
	featuredOpen, _ := States(AudienceFeatured)

	investorRule := fmt.Sprintf(
		"visibility IN (%s) OR (visibility IN (%s) AND EXISTS (SELECT 1 FROM private_investment_access pia WHERE pia.opportunity_id = investment_opportunities.id AND pia.user_id = %s))",
		sqlList(investorOpen), sqlList(investorGranted), currentUser,
	)

	fileRule := fmt.Sprintf(
		"visibility = '%s' OR (visibility = '%s' AND EXISTS (SELECT 1 FROM investment_opportunities o WHERE o.id = files.opportunity_id)) OR (visibility = '%s' AND EXISTS (SELECT 1 FROM file_user_access fua WHERE fua.file_id = files.id AND fua.user_id = %s))",
		model.FileVisibilityAll, model.FileVisibilityOpportunityViewers, model.FileVisibilitySpecificUsers, currentUser,
	)

	return []string{
		createRole(InvestorDBRole),
		createRole(PublicDBRole),
		"ALTER TABLE investment_opportunities ENABLE ROW LEVEL SECURITY",
		"ALTER TABLE files ENABLE ROW LEVEL SECURITY",
		fmt.Sprintf("GRANT SELECT ON investment_opportunities, sections, images, files, private_investment_access, file_user_access TO %s", InvestorDBRole),
		fmt.Sprintf("GRANT SELECT ON investment_opportunities, sections, images TO %s", PublicDBRole),
		"DROP POLICY IF EXISTS opportunities_investor_read ON investment_opportunities",
		fmt.Sprintf("CREATE POLICY opportunities_investor_read ON investment_opportunities FOR SELECT TO %s USING (%s)", InvestorDBRole, investorRule),
		"DROP POLICY IF EXISTS opportunities_public_read ON investment_opportunities",
		fmt.Sprintf("CREATE POLICY opportunities_public_read ON investment_opportunities FOR SELECT TO %s USING (visibility IN (%s))", PublicDBRole, sqlList(featuredOpen)),
		"DROP POLICY IF EXISTS files_investor_read ON files",
		fmt.Sprintf("CREATE POLICY files_investor_read ON files FOR SELECT TO %s USING (%s)", InvestorDBRole, fileRule),
	}
}

func createRole(name string) string {
	return fmt.Sprintf("DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = '%s') THEN CREATE ROLE %s NOLOGIN; END IF; END $$", name, name)
}

func sqlList(states []model.OpportunityVisibility) string {
	quoted := make([]string, len(states))
	for i, s := range states {
		quoted[i] = "'" + string(s) + "'"
	}
	return strings.Join(quoted, ", ")
}
