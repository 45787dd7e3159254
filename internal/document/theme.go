package document

// ThemeSettings are the theme-wide visual defaults every block render starts
// from. Block-level Style overrides layer on top.
type ThemeSettings struct {
	PrimaryColor  string `json:"primary_color"`
	AccentColor   string `json:"accent_color,omitempty"`
	TextColor     string `json:"text_color"`
	Background    string `json:"background"`
	LinkColor     string `json:"link_color,omitempty"`
	FontFamily    string `json:"font_family"`
	HeadingFont   string `json:"heading_font,omitempty"`
	BaseFontSize  string `json:"base_font_size,omitempty"`
	ContentWidth  string `json:"content_width,omitempty"`
	BorderRadius  string `json:"border_radius,omitempty"`
}

// DefaultThemeSettings returns the settings a new theme starts with.
func DefaultThemeSettings() ThemeSettings {
	return ThemeSettings{
		PrimaryColor: "#2563eb",
		AccentColor:  "#f59e0b",
		TextColor:    "#111827",
		Background:   "#ffffff",
		LinkColor:    "#2563eb",
		FontFamily:   "system-ui, sans-serif",
		BaseFontSize: "16px",
		ContentWidth: "1080px",
		BorderRadius: "8px",
	}
}

// Theme groups pages under shared settings.
type Theme struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Settings    ThemeSettings `json:"settings"`
	CreatedAt   int64         `json:"created_at"`
	UpdatedAt   int64         `json:"updated_at,omitempty"`
}
