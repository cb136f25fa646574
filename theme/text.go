package theme

import (
	"fmt"
	"strings"
)

// TextStyle is a typography preset. Color is a palette key; an empty Color or zero FontSize inherits
// from the surrounding text.
type TextStyle struct {
	FontWeight int    `json:"fontWeight" yaml:"fontWeight" toml:"fontWeight"`
	FontSize   int    `json:"fontSize,omitempty" yaml:"fontSize,omitempty" toml:"fontSize,omitempty"`
	FontStyle  string `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty" toml:"fontStyle,omitempty"`
	Color      string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
}

func textPresets() map[string]TextStyle {
	return map[string]TextStyle{
		"main":         {FontWeight: 500, Color: "text2"},
		"link":         {FontWeight: 500, Color: "primary1"},
		"black":        {FontWeight: 500, Color: "text1"},
		"body":         {FontWeight: 400, FontSize: 16, Color: "text1"},
		"largeHeader":  {FontWeight: 600, FontSize: 24},
		"mediumHeader": {FontWeight: 500, FontSize: 20},
		"subHeader":    {FontWeight: 400, FontSize: 14},
		"blue":         {FontWeight: 500, Color: "primary1"},
		"yellow":       {FontWeight: 500, Color: "yellow1"},
		"darkGray":     {FontWeight: 500, Color: "text3"},
		"gray":         {FontWeight: 500, Color: "bg3"},
		"italic":       {FontWeight: 500, FontSize: 12, FontStyle: "italic", Color: "text2"},
	}
}

// ErrorText is the preset for a value that may be in error.
func ErrorText(isError bool) TextStyle {
	if isError {
		return TextStyle{FontWeight: 500, Color: "red1"}
	}

	return TextStyle{FontWeight: 500, Color: "text2"}
}

// CSS renders the declarations of s with colors resolved against t.
func (t Theme) CSS(s TextStyle) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "font-weight: %d;", s.FontWeight)
	if s.FontSize > 0 {
		fmt.Fprintf(&b, " font-size: %dpx;", s.FontSize)
	}
	if s.FontStyle != "" {
		fmt.Fprintf(&b, " font-style: %s;", s.FontStyle)
	}
	if s.Color != "" {
		c, ok := t.Colors.Color(s.Color)
		if !ok {
			return "", fmt.Errorf("unknown palette color %q", s.Color)
		}
		fmt.Fprintf(&b, " color: %s;", c)
	}

	return b.String(), nil
}
