package sources

// Parameter defaults shared by the tool schemas and the REST binding tags.
const (
	DefaultPaperQuery      = "artificial intelligence"
	DefaultPaperMaxResults = 5
	DefaultStoryMaxResults = 10
	DefaultArticleTag      = "machinelearning"
	DefaultArticleMax      = 8
	DefaultNewsMaxResults  = 8
	DefaultDashboardMax    = 5
	DefaultReadMaxChars    = 4000

	SortSubmittedDate = "submittedDate"
	SortRelevance     = "relevance"
	// SortNewest is accepted as an alias of SortSubmittedDate.
	SortNewest = "newest"
)

type PaperParams struct {
	Query      string `form:"query,default=artificial intelligence" json:"query" binding:"required,min=1,max=200"`
	Category   string `form:"category" json:"category,omitempty" binding:"omitempty,max=20"`
	MaxResults int    `form:"max_results,default=5" json:"max_results" binding:"min=1,max=20"`
	SortBy     string `form:"sort_by,default=submittedDate" json:"sort_by" binding:"oneof=submittedDate relevance newest"`
}

type StoryParams struct {
	MaxResults int  `form:"max_results,default=10" json:"max_results" binding:"min=1,max=30"`
	FilterAI   bool `form:"filter_ai,default=true" json:"filter_ai"`
}

type ArticleParams struct {
	Tag        string `form:"tag,default=machinelearning" json:"tag" binding:"required,min=1,max=50"`
	MaxResults int    `form:"max_results,default=8" json:"max_results" binding:"min=1,max=20"`
}

type NewsParams struct {
	Source     string `form:"source,default=all" json:"source" binding:"required,min=1,max=50"`
	MaxResults int    `form:"max_results,default=8" json:"max_results" binding:"min=1,max=20"`
}

type DashboardParams struct {
	IncludePapers bool `form:"include_papers,default=true" json:"include_papers"`
	IncludeNews   bool `form:"include_news,default=true" json:"include_news"`
	IncludeHN     bool `form:"include_hn,default=true" json:"include_hn"`
	MaxItemsEach  int  `form:"max_items_each,default=5" json:"max_items_each" binding:"min=1,max=10"`
}

type ReadParams struct {
	URL      string `form:"url" json:"url" binding:"required,http_url,max=2048"`
	MaxChars int    `form:"max_chars,default=4000" json:"max_chars" binding:"min=200,max=20000"`
}
