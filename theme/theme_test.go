package theme

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestColors(t *testing.T) {
	t.Parallel()

	dark, light := Colors(true), Colors(false)

	assert.Equal(t, "#E8EAF6", dark.White)
	assert.Equal(t, dark.White, light.White)
	assert.Equal(t, dark.Black, light.Black)
	assert.Equal(t, "#FF8A80", dark.Text1)
	assert.Equal(t, "#263238", light.Text1)
	assert.Equal(t, "#0D47A1", dark.BG1)
	assert.Equal(t, "#ECEFF1", light.BG1)
	assert.Equal(t, "#FF4081", dark.Primary1)
	assert.Equal(t, "#3D5AFE", light.Primary1)
	assert.Equal(t, "rgba(255,82,82,0.425)", dark.ModalBG)
	assert.Equal(t, "#FFD600", light.Yellow2)

	c, ok := dark.Color("primaryText1")
	require.True(t, ok)
	assert.Equal(t, "#FF4081", c)
	_, ok = dark.Color("blue4")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		darkMode   bool
		wantShadow string
	}{
		{name: "dark", darkMode: true, wantShadow: "#000"},
		{name: "light", darkMode: false, wantShadow: "#2F80ED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			th := New(tt.darkMode)
			assert.Equal(t, tt.wantShadow, th.Shadow1)
			assert.Equal(t, Grids{SM: 8, MD: 12, LG: 24}, th.Grids)
			assert.Equal(t, MediaWidths{UpToExtraSmall: 500, UpToSmall: 600, UpToMedium: 960, UpToLarge: 1280}, th.MediaWidths)
			assert.Equal(t, Colors(tt.darkMode), th.Colors)
			assert.Len(t, th.Text, 12)
		})
	}
}

func TestTheme_CSS(t *testing.T) {
	t.Parallel()

	th := New(false)

	got, err := th.CSS(th.Text["italic"])
	require.NoError(t, err)
	assert.Equal(t, "font-weight: 500; font-size: 12px; font-style: italic; color: #37474F;", got)

	got, err = th.CSS(ErrorText(true))
	require.NoError(t, err)
	assert.Equal(t, "font-weight: 500; color: #D32F2F;", got)

	got, err = th.CSS(th.Text["largeHeader"])
	require.NoError(t, err)
	assert.Equal(t, "font-weight: 600; font-size: 24px;", got)

	_, err = th.CSS(TextStyle{FontWeight: 400, Color: "blue9"})
	require.ErrorContains(t, err, `unknown palette color "blue9"`)
}

func TestMedia(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "@media (max-width: 600px) {\n"+FlexColumnNoWrap+"\n}", Media(New(true).MediaWidths.UpToSmall, FlexColumnNoWrap))
}

func TestTransparentize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  float64
		give    string
		want    string
		wantErr bool
	}{
		{name: "hex", amount: 0.9, give: "#FF4081", want: "rgba(255,64,129,0.1)"},
		{name: "fully transparent", amount: 1, give: "#0D47A1", want: "rgba(13,71,161,0)"},
		{name: "short hex", amount: 0.5, give: "#000", want: "rgba(0,0,0,0.5)"},
		{name: "hex with alpha", amount: 0.1, give: "#880E4F70", want: "rgba(136,14,79,0.34)"},
		{name: "rgba", amount: 0.2, give: "rgba(38,50,56,0.3)", want: "rgba(38,50,56,0.1)"},
		{name: "clamped", amount: 2, give: "rgb(1, 2, 3)", want: "rgba(1,2,3,0)"},
		{name: "negative amount keeps opaque hex", amount: -1, give: "#2F80ED", want: "#2f80ed"},
		{name: "named color", amount: 0.1, give: "red", wantErr: true},
		{name: "bad hex", amount: 0.1, give: "#12345", wantErr: true},
		{name: "bad rgba", amount: 0.1, give: "rgba(1,2,3)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Transparentize(tt.amount, tt.give)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTheme_GlobalCSS(t *testing.T) {
	t.Parallel()

	css, err := New(true).GlobalCSS()
	require.NoError(t, err)

	assert.Contains(t, css, FixedCSS())
	assert.Contains(t, css, "color: #FF8A80;")
	assert.Contains(t, css, "background-color: #1565C0;")
	assert.Contains(t, css, "radial-gradient(50% 50% at 50% 50%, rgba(255,64,129,0.1) 0%, rgba(13,71,161,0) 100%)")

	css, err = New(false).GlobalCSS()
	require.NoError(t, err)
	assert.Contains(t, css, "rgba(61,90,254,0.1) 0%, rgba(236,239,241,0) 100%")
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, got)

	_, err = ParseFormat("xml")
	require.ErrorContains(t, err, `unsupported theme format "xml"`)
}

func TestTheme_Export(t *testing.T) {
	t.Parallel()

	th := New(true)

	tests := []struct {
		format Format
		decode func([]byte, any) error
	}{
		{format: FormatJSON, decode: json.Unmarshal},
		{format: FormatYAML, decode: yaml.Unmarshal},
		{format: FormatTOML, decode: toml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, th.Export(&buf, tt.format))

			var got Theme
			require.NoError(t, tt.decode(buf.Bytes(), &got))
			assert.Equal(t, th, got)
		})
	}

	t.Run("css", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, th.Export(&buf, FormatCSS))
		want, err := th.GlobalCSS()
		require.NoError(t, err)
		assert.Equal(t, want, buf.String())
	})

	require.ErrorContains(t, th.Export(&bytes.Buffer{}, Format("xml")), "unsupported theme format")
}
