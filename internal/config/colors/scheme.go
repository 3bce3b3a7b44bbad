package colors

// ColorScheme defines the colors used when rendering the board in a terminal
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome", "wave")
	Preset string `yaml:"preset" mapstructure:"preset"`

	// Primary accent color (column headers, highlights)
	Accent string `yaml:"accent" mapstructure:"accent"`

	// Borders
	ColumnBorder string `yaml:"column_border" mapstructure:"column_border"`
	CardBorder   string `yaml:"card_border" mapstructure:"card_border"`

	// Text colors
	Title  string `yaml:"title" mapstructure:"title"`
	Subtle string `yaml:"subtle" mapstructure:"subtle"` // Counts, numbers, dates
	Normal string `yaml:"normal" mapstructure:"normal"`

	// Status colors
	Closed  string `yaml:"closed" mapstructure:"closed"`
	Success string `yaml:"success" mapstructure:"success"`
	Error   string `yaml:"error" mapstructure:"error"`
}

// Default mirrors the GitHub dark palette.
func Default() *ColorScheme {
	return &ColorScheme{
		Preset:       "default",
		Accent:       "#2F81F7",
		ColumnBorder: "#30363D",
		CardBorder:   "#484F58",
		Title:        "#E6EDF3",
		Subtle:       "#7D8590",
		Normal:       "#C9D1D9",
		Closed:       "#A371F7",
		Success:      "#3FB950",
		Error:        "#F85149",
	}
}

// Monochrome uses grays only; closed projects still read through strikethrough.
func Monochrome() *ColorScheme {
	return &ColorScheme{
		Preset:       "monochrome",
		Accent:       "#FFFFFF",
		ColumnBorder: "#BCBCBC",
		CardBorder:   "#6C6C6C",
		Title:        "#FFFFFF",
		Subtle:       "#8A8A8A",
		Normal:       "#D0D0D0",
		Closed:       "#8A8A8A",
		Success:      "#FFFFFF",
		Error:        "#FFFFFF",
	}
}

var presets = map[string]func() *ColorScheme{
	"default":    Default,
	"monochrome": Monochrome,
	"wave":       Wave,
}

// Presets lists the names accepted by GetPreset
func Presets() []string {
	return []string{"default", "monochrome", "wave"}
}

// GetPreset returns a preset color scheme by name, falling back to Default.
func GetPreset(name string) *ColorScheme {
	if fn, ok := presets[name]; ok {
		return fn()
	}
	return Default()
}

// ApplyDefaults fills in missing color values using the preset as base
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Accent, preset.Accent)
	fill(&c.ColumnBorder, preset.ColumnBorder)
	fill(&c.CardBorder, preset.CardBorder)
	fill(&c.Title, preset.Title)
	fill(&c.Subtle, preset.Subtle)
	fill(&c.Normal, preset.Normal)
	fill(&c.Closed, preset.Closed)
	fill(&c.Success, preset.Success)
	fill(&c.Error, preset.Error)
}
