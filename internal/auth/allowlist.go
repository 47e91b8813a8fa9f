package auth

import "strings"

// AdminAllowList is the set of emails that may hold an admin session.
type AdminAllowList struct {
	emails map[string]struct{}
}

// ParseAdminAllowList reads a comma separated list. Entries are trimmed and
// compared case-insensitively; empty entries are ignored.
func ParseAdminAllowList(raw string) *AdminAllowList {
	list := &AdminAllowList{emails: make(map[string]struct{})}
	for _, email := range strings.Split(raw, ",") {
		email = normalizeEmail(email)
		if email != "" {
			list.emails[email] = struct{}{}
		}
	}
	return list
}

func (l *AdminAllowList) Contains(email string) bool {
	if l == nil {
		return false
	}
	_, ok := l.emails[normalizeEmail(email)]
	return ok
}

func (l *AdminAllowList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.emails)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
