package browse

// windowSize is the number of page buttons shown at once.
const windowSize = 5

// PageWindow returns the page numbers to display for a pager positioned at
// current out of total pages. At most five pages are shown; the window keeps
// two pages on either side of current and is clamped at both ends.
func PageWindow(current, total int) []int {
	if total <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	count := min(windowSize, total)
	pages := make([]int, count)
	for i := range pages {
		switch {
		case total <= windowSize:
			pages[i] = i + 1
		case current <= 3:
			pages[i] = i + 1
		case current >= total-2:
			pages[i] = total - windowSize + 1 + i
		default:
			pages[i] = current - 2 + i
		}
	}
	return pages
}

// TotalPages mirrors the backend: ceil(total/size), zero when empty.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
