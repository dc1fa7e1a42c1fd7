package results

// DefaultPageSize matches the dashboard's results-per-page setting.
const DefaultPageSize = 25

// Paginate returns the 1-based page window of posts. A page beyond the end
// yields an empty slice, and a non-positive size falls back to the default.
func Paginate(posts []Post, page, size int) []Post {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(posts) {
		return []Post{}
	}
	end := start + size
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}
