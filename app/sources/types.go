package sources

type PaperItem struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Abstract      string   `json:"abstract"`
	Categories    []string `json:"categories"`
	PublishedDate string   `json:"published_date"`
	ArxivURL      string   `json:"arxiv_url"`
	PDFURL        string   `json:"pdf_url"`
}

type PaperResult struct {
	Query          string      `json:"query"`
	CategoryFilter string      `json:"category_filter"`
	SortBy         string      `json:"sort_by"`
	Count          int         `json:"count"`
	Papers         []PaperItem `json:"papers"`
	Message        string      `json:"message,omitempty"`
}

type StoryItem struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Score        int    `json:"score"`
	Author       string `json:"author"`
	CommentCount int    `json:"comment_count"`
	PostedAt     string `json:"posted_at"`
	HNDiscussion string `json:"hn_discussion"`
}

type StoryResult struct {
	Source        string      `json:"source"`
	FilteredForAI bool        `json:"filtered_for_ai"`
	Count         int         `json:"count"`
	Stories       []StoryItem `json:"stories"`
}

type ArticleItem struct {
	Title              string   `json:"title"`
	Author             string   `json:"author"`
	AuthorUsername     string   `json:"author_username"`
	Tags               []string `json:"tags"`
	Description        string   `json:"description"`
	ReactionsCount     int      `json:"reactions_count"`
	CommentsCount      int      `json:"comments_count"`
	ReadingTimeMinutes int      `json:"reading_time_minutes"`
	PublishedAt        string   `json:"published_at"`
	URL                string   `json:"url"`
}

type ArticleResult struct {
	Source   string        `json:"source"`
	Tag      string        `json:"tag"`
	Count    int           `json:"count"`
	Articles []ArticleItem `json:"articles"`
}

type NewsItem struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Published string `json:"published"`
	URL       string `json:"url"`
}

type NewsResult struct {
	SourceFilter string     `json:"source_filter"`
	Count        int        `json:"count"`
	News         []NewsItem `json:"news"`
	Message      string     `json:"message,omitempty"`
}

// ArticleText is the readable text of a web page.
type ArticleText struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline"`
	SiteName string `json:"site_name"`
	Excerpt  string `json:"excerpt"`
	Length   int    `json:"length"`
	Content  string `json:"content"`
}
