package colors

// Kanagawa Wave palette
const (
	sumiInk4    = "#2A2A37"
	sumiInk6    = "#54546D"
	oniViolet   = "#957FB8"
	crystalBlue = "#7E9CD8"
	springGreen = "#98BB6C"
	fujiGray    = "#727169"
	fujiWhite   = "#DCD7BA"
	samuraiRed  = "#E82424"
)

// Wave returns the Kanagawa Wave color scheme (dark theme with blue/purple accents)
func Wave() *ColorScheme {
	return &ColorScheme{
		Preset: "wave",

		Accent: oniViolet,

		ColumnBorder: sumiInk6,
		CardBorder:   sumiInk4,

		Title:  crystalBlue,
		Subtle: fujiGray,
		Normal: fujiWhite,

		Closed:  oniViolet,
		Success: springGreen,
		Error:   samuraiRed,
	}
}
