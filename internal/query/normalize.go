package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"salesledger/pkg/domain"
)

// Params are the raw, untrusted query-string values. Every field is optional.
type Params struct {
	Regions    string
	Genders    string
	Categories string
	AgeMin     string
	AgeMax     string
	DateStart  string
	DateEnd    string
	Search     string
	SortBy     string
	Page       string
	PageSize   string
}

// ParamsFromValues reads Params from a parsed query string.
func ParamsFromValues(v url.Values) Params {
	return Params{
		Regions:    v.Get("regions"),
		Genders:    v.Get("genders"),
		Categories: v.Get("categories"),
		AgeMin:     v.Get("ageMin"),
		AgeMax:     v.Get("ageMax"),
		DateStart:  v.Get("dateStart"),
		DateEnd:    v.Get("dateEnd"),
		Search:     v.Get("search"),
		SortBy:     v.Get("sortBy"),
		Page:       v.Get("page"),
		PageSize:   v.Get("pageSize"),
	}
}

// Request is the normalized form of Params.
type Request struct {
	Filters Filters
	Sort    SortKey
	Page    PageRequest
}

// Order resolves the request's sort key.
func (r Request) Order() Order {
	return ResolveSort(string(r.Sort))
}

// Normalize never fails: malformed values become "no constraint" or the
// documented default.
//
// An age bound of 0 is indistinguishable from an unset bound, since only
// positive integers are accepted.
func Normalize(p Params) Request {
	return Request{
		Filters: NormalizeFilters(p),
		Sort:    ResolveSort(p.SortBy).Key,
		Page:    NormalizePage(p.Page, p.PageSize),
	}
}

// NormalizeFilters extracts the filter set from p.
func NormalizeFilters(p Params) Filters {
	return Filters{
		Regions:    splitList(p.Regions),
		Genders:    splitList(p.Genders),
		Categories: splitList(p.Categories),
		AgeMin:     positiveInt(p.AgeMin),
		AgeMax:     positiveInt(p.AgeMax),
		DateStart:  parseDate(p.DateStart),
		DateEnd:    parseDate(p.DateEnd),
		Search:     p.Search,
	}
}

// NormalizePage applies the paging defaults and the page size cap.
func NormalizePage(page, pageSize string) PageRequest {
	req := PageRequest{Page: DefaultPage, PageSize: DefaultPageSize}
	if n := positiveInt(page); n != nil {
		req.Page = *n
	}
	if n := positiveInt(pageSize); n != nil {
		req.PageSize = *n
	}
	if req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}
	return req
}

// splitList splits a comma-separated list, dropping empty and repeated
// segments. Segments are kept verbatim, so " East" is not "East". It returns
// nil when nothing remains.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, seg := range strings.Split(raw, ",") {
		if seg == "" {
			continue
		}
		if _, dup := seen[seg]; dup {
			continue
		}
		seen[seg] = struct{}{}
		out = append(out, seg)
	}
	return out
}

// positiveInt reads the leading integer of raw, so "12.5" is 12 and "20abc"
// is 20. It returns nil when there are no leading digits or the value is
// below 1.
func positiveInt(raw string) *int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	n, err := strconv.Atoi(sign + s[:end])
	if err != nil {
		// Only ErrRange is possible here.
		if sign == "-" {
			return nil
		}
		n = math.MaxInt
	}
	if n < 1 {
		return nil
	}
	return &n
}

func parseDate(raw string) *domain.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil
	}
	return &d
}
