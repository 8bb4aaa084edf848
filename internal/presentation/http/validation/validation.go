package validation

import (
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"store-it/internal/filetype"
)

const (
	MinFullNameLength = 2
	MaxFullNameLength = 50
	MaxFileNameLength = 255
	// MaxListLimit bounds the limit query parameter.
	MaxListLimit = 5000
)

// SortOptions are the accepted "<attribute>-<direction>" sort values.
var SortOptions = []string{
	"$createdAt-desc", "$createdAt-asc",
	"$updatedAt-desc", "$updatedAt-asc",
	"name-asc", "name-desc",
	"size-desc", "size-asc",
}

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

// ValidateEmail returns true for a bare address such as "ada@example.com".
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && addr.Name == ""
}

// ValidateFullName checks the sign-up name length in characters.
func ValidateFullName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= MinFullNameLength && n <= MaxFullNameLength
}

// ValidateOTP accepts six-digit codes.
func ValidateOTP(code string) bool {
	return otpPattern.MatchString(strings.TrimSpace(code))
}

// ValidateFileName rejects empty names, path separators and overly long names.
func ValidateFileName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxFileNameLength {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// ValidateSort returns true if sort is one of SortOptions.
func ValidateSort(sort string) bool {
	for _, s := range SortOptions {
		if s == sort {
			return true
		}
	}
	return false
}

// ValidateEmails returns a details map naming every invalid entry.
func ValidateEmails(emails []string) map[string]interface{} {
	details := map[string]interface{}{}
	var bad []string
	for _, e := range emails {
		if strings.TrimSpace(e) == "" {
			continue
		}
		if !ValidateEmail(strings.TrimSpace(e)) {
			bad = append(bad, e)
		}
	}
	if len(bad) > 0 {
		details["emails"] = map[string]interface{}{"invalid": bad}
	}
	return details
}

// ListQuery holds parsed file listing params.
type ListQuery struct {
	Types      []string
	SearchText string
	Sort       string
	Limit      int
}

// ParseListQuery reads type (a section), types (comma separated categories),
// query, sort and limit. Returns the parsed query and a details map for
// validation errors (if any).
func ParseListQuery(q url.Values) (ListQuery, map[string]interface{}) {
	out := ListQuery{SearchText: strings.TrimSpace(q.Get("query"))}
	details := map[string]interface{}{}

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		types := filetype.TypesForSection(v)
		if types == nil {
			details["type"] = map[string]interface{}{"allowed": filetype.Sections}
		}
		out.Types = types
	}
	if v := strings.TrimSpace(q.Get("types")); v != "" {
		for _, t := range strings.Split(v, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if !filetype.IsCategory(t) {
				details["types"] = map[string]interface{}{"allowed": filetype.All}
				continue
			}
			out.Types = append(out.Types, t)
		}
	}
	if v := strings.TrimSpace(q.Get("sort")); v != "" {
		if ValidateSort(v) {
			out.Sort = v
		} else {
			details["sort"] = map[string]interface{}{"allowed": SortOptions}
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.Limit = n
		} else {
			details["limit"] = "must be a positive integer"
		}
		if out.Limit > MaxListLimit {
			details["limit"] = map[string]interface{}{"max": MaxListLimit}
			out.Limit = MaxListLimit
		}
	}
	return out, details
}

// ValidatePath accepts revalidation paths such as "/documents". Empty is
// allowed (nothing to revalidate).
func ValidatePath(path string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return false
	}
	u, err := url.Parse(path)
	return err == nil && u.Host == "" && u.Scheme == ""
}
