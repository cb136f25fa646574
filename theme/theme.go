// Package theme provides the light and dark palettes of the exchange interface, its layout
// constants and text presets, and renders them as a global stylesheet.
package theme

import "fmt"

const (
	white = "#E8EAF6"
	black = "#1A237E"
)

// Palette is the color table of one mode.
type Palette struct {
	White string `json:"white" yaml:"white" toml:"white"`
	Black string `json:"black" yaml:"black" toml:"black"`

	Text1 string `json:"text1" yaml:"text1" toml:"text1"`
	Text2 string `json:"text2" yaml:"text2" toml:"text2"`
	Text3 string `json:"text3" yaml:"text3" toml:"text3"`
	Text4 string `json:"text4" yaml:"text4" toml:"text4"`
	Text5 string `json:"text5" yaml:"text5" toml:"text5"`

	BG1 string `json:"bg1" yaml:"bg1" toml:"bg1"`
	BG2 string `json:"bg2" yaml:"bg2" toml:"bg2"`
	BG3 string `json:"bg3" yaml:"bg3" toml:"bg3"`
	BG4 string `json:"bg4" yaml:"bg4" toml:"bg4"`
	BG5 string `json:"bg5" yaml:"bg5" toml:"bg5"`

	ModalBG    string `json:"modalBG" yaml:"modalBG" toml:"modalBG"`
	AdvancedBG string `json:"advancedBG" yaml:"advancedBG" toml:"advancedBG"`

	Primary1 string `json:"primary1" yaml:"primary1" toml:"primary1"`
	Primary2 string `json:"primary2" yaml:"primary2" toml:"primary2"`
	Primary3 string `json:"primary3" yaml:"primary3" toml:"primary3"`
	Primary4 string `json:"primary4" yaml:"primary4" toml:"primary4"`
	Primary5 string `json:"primary5" yaml:"primary5" toml:"primary5"`

	PrimaryText1 string `json:"primaryText1" yaml:"primaryText1" toml:"primaryText1"`

	Secondary1 string `json:"secondary1" yaml:"secondary1" toml:"secondary1"`
	Secondary2 string `json:"secondary2" yaml:"secondary2" toml:"secondary2"`
	Secondary3 string `json:"secondary3" yaml:"secondary3" toml:"secondary3"`

	Red1    string `json:"red1" yaml:"red1" toml:"red1"`
	Red2    string `json:"red2" yaml:"red2" toml:"red2"`
	Green1  string `json:"green1" yaml:"green1" toml:"green1"`
	Yellow1 string `json:"yellow1" yaml:"yellow1" toml:"yellow1"`
	Yellow2 string `json:"yellow2" yaml:"yellow2" toml:"yellow2"`
}

// Colors returns the palette for the given mode.
func Colors(darkMode bool) Palette {
	pick := func(dark, light string) string {
		if darkMode {
			return dark
		}

		return light
	}

	return Palette{
		White: white,
		Black: black,

		Text1: pick("#FF8A80", "#263238"),
		Text2: pick("#FF5252", "#37474F"),
		Text3: pick("#FF1744", "#455A64"),
		Text4: pick("#D50000", "#607D8B"),
		Text5: pick("#C51162", "#78909C"),

		BG1: pick("#0D47A1", "#ECEFF1"),
		BG2: pick("#1565C0", "#CFD8DC"),
		BG3: pick("#1976D2", "#B0BEC5"),
		BG4: pick("#1E88E5", "#90A4AE"),
		BG5: pick("#42A5F5", "#78909C"),

		ModalBG:    pick("rgba(255,82,82,0.425)", "rgba(38,50,56,0.3)"),
		AdvancedBG: pick("rgba(38,50,56,0.1)", "rgba(224,247,250,0.6)"),

		Primary1: pick("#FF4081", "#3D5AFE"),
		Primary2: pick("#F50057", "#304FFE"),
		Primary3: pick("#C51162", "#1A237E"),
		Primary4: pick("#880E4F70", "#8C9EFF"),
		Primary5: pick("#AD145770", "#B3E5FC"),

		PrimaryText1: pick("#FF4081", "#283593"),

		Secondary1: pick("#FF80AB", "#536DFE"),
		Secondary2: pick("#FF80AB26", "#8C9EFF"),
		Secondary3: pick("#FF80AB26", "#E3F2FD"),

		Red1:    pick("#FF5252", "#D32F2F"),
		Red2:    pick("#FF1744", "#E53935"),
		Green1:  pick("#69F0AE", "#00C853"),
		Yellow1: pick("#FFD600", "#FFEB3B"),
		Yellow2: pick("#FFC400", "#FFD600"),
	}
}

// Color looks a palette entry up by its key, e.g. "text1" or "primary1".
func (p Palette) Color(key string) (string, bool) {
	colors := map[string]string{
		"white": p.White, "black": p.Black,
		"text1": p.Text1, "text2": p.Text2, "text3": p.Text3, "text4": p.Text4, "text5": p.Text5,
		"bg1": p.BG1, "bg2": p.BG2, "bg3": p.BG3, "bg4": p.BG4, "bg5": p.BG5,
		"modalBG": p.ModalBG, "advancedBG": p.AdvancedBG,
		"primary1": p.Primary1, "primary2": p.Primary2, "primary3": p.Primary3, "primary4": p.Primary4,
		"primary5": p.Primary5, "primaryText1": p.PrimaryText1,
		"secondary1": p.Secondary1, "secondary2": p.Secondary2, "secondary3": p.Secondary3,
		"red1": p.Red1, "red2": p.Red2, "green1": p.Green1, "yellow1": p.Yellow1, "yellow2": p.Yellow2,
	}
	c, ok := colors[key]

	return c, ok
}

// Grids are the spacing steps in pixels.
type Grids struct {
	SM int `json:"sm" yaml:"sm" toml:"sm"`
	MD int `json:"md" yaml:"md" toml:"md"`
	LG int `json:"lg" yaml:"lg" toml:"lg"`
}

// MediaWidths are the responsive breakpoints in pixels.
type MediaWidths struct {
	UpToExtraSmall int `json:"upToExtraSmall" yaml:"upToExtraSmall" toml:"upToExtraSmall"`
	UpToSmall      int `json:"upToSmall" yaml:"upToSmall" toml:"upToSmall"`
	UpToMedium     int `json:"upToMedium" yaml:"upToMedium" toml:"upToMedium"`
	UpToLarge      int `json:"upToLarge" yaml:"upToLarge" toml:"upToLarge"`
}

var mediaWidths = MediaWidths{
	UpToExtraSmall: 500,
	UpToSmall:      600,
	UpToMedium:     960,
	UpToLarge:      1280,
}

// Media wraps rules in a max-width media query.
func Media(maxWidth int, rules string) string {
	return fmt.Sprintf("@media (max-width: %dpx) {\n%s\n}", maxWidth, rules)
}

const (
	FlexColumnNoWrap = "display: flex;\nflex-flow: column nowrap;"
	FlexRowNoWrap    = "display: flex;\nflex-flow: row nowrap;"
)

// Theme is the full theme object of one mode.
type Theme struct {
	DarkMode    bool                 `json:"darkMode" yaml:"darkMode" toml:"darkMode"`
	Colors      Palette              `json:"colors" yaml:"colors" toml:"colors"`
	Grids       Grids                `json:"grids" yaml:"grids" toml:"grids"`
	Shadow1     string               `json:"shadow1" yaml:"shadow1" toml:"shadow1"`
	MediaWidths MediaWidths          `json:"mediaWidths" yaml:"mediaWidths" toml:"mediaWidths"`
	Text        map[string]TextStyle `json:"text" yaml:"text" toml:"text"`
}

// New returns the theme for the given mode.
func New(darkMode bool) Theme {
	shadow := "#2F80ED"
	if darkMode {
		shadow = "#000"
	}

	return Theme{
		DarkMode:    darkMode,
		Colors:      Colors(darkMode),
		Grids:       Grids{SM: 8, MD: 12, LG: 24},
		Shadow1:     shadow,
		MediaWidths: mediaWidths,
		Text:        textPresets(),
	}
}
