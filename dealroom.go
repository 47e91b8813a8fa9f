package dealroom

import "embed"

// EmailFS holds the html and plaintext email templates, one directory per template.
//
//go:embed templates/emails
var EmailFS embed.FS

// MigrationsFS holds the ordered schema migrations applied by dealroomctl.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
