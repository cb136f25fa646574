package theme

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is an export format of a Theme.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCSS  Format = "css"
)

var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatCSS}

// ParseFormat parses a format name, accepting "yml" for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML, FormatCSS:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported theme format %q, expected one of %v", s, Formats)
	}
}

// Export writes t to w in the given format.
func (t Theme) Export(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(t)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}

		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(t)
	case FormatCSS:
		css, err := t.GlobalCSS()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, css)

		return err
	default:
		return fmt.Errorf("unsupported theme format %q", f)
	}
}
