package theme

import (
	"fmt"
	"strings"
	"text/template"
)

const fixedCSS = `html, input, textarea, button {
  font-family: 'Inter', sans-serif;
  letter-spacing: -0.018em;
  font-display: fallback;
}
@supports (font-variation-settings: normal) {
  html, input, textarea, button {
    font-family: 'Inter var', sans-serif;
  }
}

html,
body {
  margin: 0;
  padding: 0;
}

* {
  box-sizing: border-box;
}

button {
  user-select: none;
}

html {
  font-size: 16px;
  font-variant: none;
  -webkit-font-smoothing: antialiased;
  -moz-osx-font-smoothing: grayscale;
  -webkit-tap-highlight-color: rgba(0, 0, 0, 0);
}
`

var themedCSS = template.Must(template.New("themed").Parse(`
html {
  color: {{ .Text1 }};
  background-color: {{ .BG2 }};
}

body {
  min-height: 100vh;
  background-position: 0 -30vh;
  background-repeat: no-repeat;
  background-image: radial-gradient(50% 50% at 50% 50%, {{ .Glow }} 0%, {{ .Fade }} 100%);
}
`))

// FixedCSS returns the stylesheet shared by both modes.
func FixedCSS() string { return fixedCSS }

// GlobalCSS renders the fixed stylesheet followed by the rules that depend on the palette.
func (t Theme) GlobalCSS() (string, error) {
	glow, err := Transparentize(0.9, t.Colors.Primary1)
	if err != nil {
		return "", fmt.Errorf("primary1: %w", err)
	}
	fade, err := Transparentize(1, t.Colors.BG1)
	if err != nil {
		return "", fmt.Errorf("bg1: %w", err)
	}

	var b strings.Builder
	b.WriteString(fixedCSS)
	err = themedCSS.Execute(&b, struct {
		Text1, BG2, Glow, Fade string
	}{
		Text1: t.Colors.Text1,
		BG2:   t.Colors.BG2,
		Glow:  glow,
		Fade:  fade,
	})
	if err != nil {
		return "", err
	}

	return b.String(), nil
}
