// Package prompt holds the prompt template registry for content generation.
package prompt

import (
	"strings"

	"github.com/postforge/postforge/internal/domain"
)

// Category groups templates by the content they produce.
type Category string

// Template categories.
const (
	CategoryBlog    Category = "blog"
	CategorySocial  Category = "social"
	CategoryEmail   Category = "email"
	CategoryGeneral Category = "general"
)

// Well-known template IDs.
const (
	IDBlogIdeas   = "blog-ideas"
	IDBlogArticle = "blog-article"
)

// Template is a reusable prompt with {var} placeholders.
type Template struct {
	ID          string
	Name        string
	Description string
	Text        string
	Variables   []string
	Category    Category
}

// Format substitutes {var} placeholders with the given values. A line whose
// placeholder has no value is dropped entirely, so optional context (a
// YouTube URL, a keyword list) disappears cleanly instead of leaving an
// empty clause behind.
func (t Template) Format(vars map[string]string) string {
	lines := strings.Split(t.Text, "\n")
	out := make([]string, 0, len(lines))

Line:
	for _, line := range lines {
		for _, v := range t.Variables {
			ph := "{" + v + "}"
			if !strings.Contains(line, ph) {
				continue
			}
			val, ok := vars[v]
			if !ok || val == "" {
				continue Line
			}
			line = strings.ReplaceAll(line, ph, val)
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// Registry resolves templates by ID or category.
type Registry struct {
	templates []Template
}

// NewRegistry creates a registry with the built-in templates.
func NewRegistry() *Registry {
	return &Registry{templates: builtin()}
}

// ByID returns the template with the given ID.
func (r *Registry) ByID(id string) (Template, error) {
	for _, t := range r.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, domain.ErrPromptNotFound
}

// ByCategory returns all templates in a category.
func (r *Registry) ByCategory(c Category) []Template {
	var out []Template
	for _, t := range r.templates {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

func builtin() []Template {
	return []Template{
		{
			ID:          IDBlogIdeas,
			Name:        "Blog Post Ideas Generator",
			Description: "Generates blog post title ideas for a topic and industry",
			Text: `You are an expert academic writer and industry thought leader specializing in {industry}.
Generate 3 sophisticated and intellectually stimulating blog post titles about {topic}.
Each title should:
- Be compelling and attention-grabbing
- Demonstrate deep industry expertise
- Appeal to an educated, professional audience
- Be clear and concise
- Hint at valuable insights without giving everything away

Return ONLY the titles, one per line, without any descriptions or additional text.`,
			Variables: []string{"industry", "topic"},
			Category:  CategoryBlog,
		},
		{
			ID:          IDBlogArticle,
			Name:        "Blog Post Generator",
			Description: "Generates a full HTML blog post",
			Text: `You are a professional blog writer specializing in {industry}.
Write a comprehensive, well-structured blog post about "{title}".
Include the following keywords naturally in the content: {keywords}.
Incorporate insights from this YouTube video: {youtube_url}.
The article should be engaging, informative, and provide value to a professional audience.
Use proper HTML formatting for headings, paragraphs, and lists.

Focus on practical advice and actionable insights that business owners can implement.
Maintain a professional yet conversational tone.
Include relevant examples and case studies where appropriate.`,
			Variables: []string{"industry", "title", "keywords", "youtube_url"},
			Category:  CategoryBlog,
		},
		{
			ID:          "social-post",
			Name:        "Social Media Post Generator",
			Description: "Generates a social media post",
			Text: `Create an engaging social media post about {topic}.
The post should be informative, engaging, and encourage interaction.
Include relevant hashtags and a call to action.
Keep the tone professional yet conversational.`,
			Variables: []string{"topic"},
			Category:  CategorySocial,
		},
		{
			ID:          "email-newsletter",
			Name:        "Email Newsletter Generator",
			Description: "Generates email newsletter content",
			Text: `Create an engaging email newsletter about {topic}.
The newsletter should include:
- A compelling subject line
- An engaging introduction
- Main content with valuable insights
- A clear call to action
- Professional sign-off

Focus on providing actionable advice that business owners can implement.`,
			Variables: []string{"topic"},
			Category:  CategoryEmail,
		},
	}
}
