package registry

type Endpoints struct {
	Arxiv                string `yaml:"arxiv"`
	HackerNews           string `yaml:"hackernews"`
	HackerNewsDiscussion string `yaml:"hackernews_discussion"`
	DevTo                string `yaml:"devto"`
}

type Category struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Feed struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type document struct {
	Endpoints  Endpoints  `yaml:"endpoints"`
	Categories []Category `yaml:"categories"`
	Feeds      []Feed     `yaml:"feeds"`
	Keywords   []string   `yaml:"keywords"`
}
