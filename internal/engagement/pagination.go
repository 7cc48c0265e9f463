package engagement

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 20

// Slice returns page (1-based) of items and the total item count. Pages past
// the end yield an empty slice with the real total.
func Slice[T any](items []T, page, pageSize int) ([]T, int) {
	total := len(items)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	if total == 0 || page-1 > (total-1)/pageSize {
		return []T{}, total
	}
	start := (page - 1) * pageSize
	end := total
	if pageSize < total-start {
		end = start + pageSize
	}
	return items[start:end], total
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total-1)/pageSize + 1
}
