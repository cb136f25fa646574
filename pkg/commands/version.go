package commands

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// Version creates the version command. version is the build version, normally set through
// -ldflags at build time.
func (c *Commands) Version(version string) *cobra.Command {
	var constraint string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := semver.NewVersion(version)
			if err != nil {
				return fmt.Errorf("invalid build version %q: %w", version, err)
			}

			if constraint != "" {
				cons, err := semver.NewConstraint(constraint)
				if err != nil {
					return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
				}
				if ok, errs := cons.Validate(v); !ok {
					return fmt.Errorf("version %s does not satisfy %q: %v", v, constraint, errs)
				}
			}

			cmd.Printf("popswap v%s\n", v)

			return nil
		},
	}

	cmd.Flags().StringVar(&constraint, "check", "", "Fail unless the version satisfies this constraint, e.g. \">= 1.2\"")

	return cmd
}
