package repository

import "github.com/qrdesk/qr-admin-api/internal/domain"

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func toPage[D any, T any](rows []D, total int64, req domain.PageRequest, convert func(D) T) domain.Page[T] {
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		items = append(items, convert(row))
	}

	return domain.NewPage(items, total, req)
}
