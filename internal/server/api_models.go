package server

// CreateThemeRequest represents the payload required to create a theme.
type CreateThemeRequest struct {
	Slug        string `json:"slug" example:"storefront"`
	Name        string `json:"name" example:"Storefront"`
	Description string `json:"description" example:"A clean commerce theme"`
}

// CreatePageRequest represents the payload for creating a page within a theme.
type CreatePageRequest struct {
	Slug     string `json:"slug" example:"about"`
	Name     string `json:"name" example:"About"`
	Template string `json:"template" example:"landing"`
}

// SaveRevisionRequest names the author and message of a revision.
type SaveRevisionRequest struct {
	Message string `json:"message" example:"hero rework"`
	Author  string `json:"author" example:"sam"`
}

// InstallThemeRequest picks a marketplace theme by slug.
type InstallThemeRequest struct {
	Slug string `json:"slug" example:"aurora"`
}

// InstallPluginRequest registers a plugin.
type InstallPluginRequest struct {
	Slug    string `json:"slug" example:"seo-toolkit"`
	Name    string `json:"name" example:"SEO Toolkit"`
	Version string `json:"version" example:"1.4.0"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
