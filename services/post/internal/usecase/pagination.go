package usecase

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*MaxLimit within int.
	MaxPage = math.MaxInt / MaxLimit
)

// ParsePagination reads raw query values. Anything missing, malformed or
// non-positive falls back to the defaults; it never fails.
func ParsePagination(page, limit string) (int, int) {
	p, err := strconv.Atoi(page)
	if err != nil {
		p = DefaultPage
	}
	l, err := strconv.Atoi(limit)
	if err != nil {
		l = DefaultLimit
	}
	return NormalizePagination(p, l)
}

func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
