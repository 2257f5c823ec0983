package store

// CourseRecord is a read-only catalog entry supplied to the assistant.
type CourseRecord struct {
	ID          int32
	Title       string
	Description string
	Category    string
	Level       string
	Rating      float64
}

// FindCourse is the filter for listing courses.
type FindCourse struct {
	ID       *int32
	Category *string
}

// NewsItem is a platform news entry surfaced by the news view and RSS feed.
type NewsItem struct {
	ID        int32
	Title     string
	Summary   string
	Link      string
	CreatedTs int64
}

// FindNews is the filter for listing news items.
type FindNews struct {
	Limit *int
}
