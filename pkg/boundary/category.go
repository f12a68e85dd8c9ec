package boundary

import "strings"

// Category classifies an action type for boundary purposes. A type can
// carry several categories (a "blog_post" is both a blog and a post is
// not desirable, so rules are ordered and blog wins over post).
type Category string

const (
	// CategoryDeployProduction marks production deployments.
	CategoryDeployProduction Category = "deploy_production"

	// CategoryDeployStaging marks staging deployments.
	CategoryDeployStaging Category = "deploy_staging"

	// CategoryBlog marks long-form publishing.
	CategoryBlog Category = "blog"

	// CategoryPost marks short-form public posting.
	CategoryPost Category = "post"

	// CategoryTrade marks trading actions.
	CategoryTrade Category = "trade"

	// CategoryCommit marks code-change actions.
	CategoryCommit Category = "commit"
)

// categoryRule maps type-string fragments to a category. Rules are
// evaluated in order; the first rule whose fragment matches claims the
// category, and later rules for overlapping vocabularies never fire
// for the same category twice.
type categoryRule struct {
	category  Category
	fragments []string
}

// categoryRules is the ordered classification table. Order matters:
// "deploy_production" must be claimed before generic fragments, and
// "blog" before "post" so a blog post is not double-counted.
var categoryRules = []categoryRule{
	{CategoryDeployProduction, []string{"deploy_production", "production_deploy", "deploy:production"}},
	{CategoryDeployStaging, []string{"deploy_staging", "staging_deploy", "deploy:staging"}},
	{CategoryBlog, []string{"blog"}},
	{CategoryPost, []string{"post", "tweet", "reply"}},
	{CategoryTrade, []string{"trading", "trade", "swap", "buy", "sell"}},
	{CategoryCommit, []string{"commit", "push"}},
}

// Categorize returns every category the action type belongs to, in
// rule-table order.
func Categorize(actionType string) []Category {
	lower := strings.ToLower(actionType)

	var categories []Category
	for _, rule := range categoryRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(lower, fragment) {
				categories = append(categories, rule.category)
				break
			}
		}
	}

	// A blog is long-form publishing, not a countable short post.
	if hasCategory(categories, CategoryBlog) {
		categories = removeCategory(categories, CategoryPost)
	}

	return categories
}

// HasCategory reports whether the action type matches the category.
func HasCategory(actionType string, category Category) bool {
	return hasCategory(Categorize(actionType), category)
}

func hasCategory(categories []Category, category Category) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

func removeCategory(categories []Category, category Category) []Category {
	out := categories[:0]
	for _, c := range categories {
		if c != category {
			out = append(out, c)
		}
	}
	return out
}
