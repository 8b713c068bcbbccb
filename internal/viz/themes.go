package viz

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Theme colours the parts of the scene that do not belong to a body.
type Theme struct {
	Name  string
	Trace colorful.Color
	Force colorful.Color
	Drag  colorful.Color
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	ThemeCyberpunk = Theme{
		Name:  "cyberpunk",
		Trace: mustHex("#666688"),
		Force: mustHex("#ffff00"),
		Drag:  mustHex("#00ffff"),
	}

	ThemeRetroGreen = Theme{
		Name:  "retro",
		Trace: mustHex("#005500"),
		Force: mustHex("#88ff88"),
		Drag:  mustHex("#00ff00"),
	}

	ThemeMinimal = Theme{
		Name:  "minimal",
		Trace: mustHex("#888888"),
		Force: mustHex("#0088ff"),
		Drag:  mustHex("#ffffff"),
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, candidate := range Themes {
		if candidate.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
