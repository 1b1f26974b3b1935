package domain

// Pagination defaults
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ValidatePagination resolves a requested page against the number of stored rows.
// A missing size falls back to defaultSize; the size is floored at 1 and capped at
// both maxSize and totalRecords. A missing or negative offset becomes 0.
func ValidatePagination(pageSize, offsetSize *int, totalRecords int64, defaultSize, maxSize int) (size int, offset int) {
	size = defaultSize
	if pageSize != nil {
		size = *pageSize
	}
	if size < 1 {
		size = 1
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	if int64(size) > totalRecords {
		size = int(totalRecords)
	}

	if offsetSize != nil && *offsetSize > 0 {
		offset = *offsetSize
	}
	return size, offset
}
