package domain

// Content is the validated portfolio payload submitted by the client. The
// form UI owns field-level validation; the pipeline only cares that enough
// of it exists to derive a slug and render a page.
type Content struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Headline string `json:"headline,omitempty"`
	About    string `json:"about,omitempty"`
	Email    string `json:"email,omitempty"`

	Links      []Link       `json:"links,omitempty"`
	Skills     []string     `json:"skills,omitempty"`
	Projects   []Project    `json:"projects,omitempty"`
	Experience []Experience `json:"experience,omitempty"`

	Theme Theme `json:"theme,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type Experience struct {
	Role    string `json:"role"`
	Company string `json:"company"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type Theme struct {
	PrimaryColor string `json:"primary_color,omitempty"`
	FontFamily   string `json:"font_family,omitempty"`
}

// DisplayName picks the name shown in the page header.
func (c Content) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	if c.Username != "" {
		return c.Username
	}
	return "Portfolio"
}
