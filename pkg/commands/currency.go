package commands

import (
	"github.com/spf13/cobra"

	"github.com/popswap/popswap-interface/chain"
	"github.com/popswap/popswap-interface/currency"
	"github.com/popswap/popswap-interface/pkg/commands/text"
)

var currencyLong = text.LongDesc(`
	Currency identifiers key the native currency and tokens in URLs and lists. The native
	currency is BROCK, a token is its checksummed contract address.
`)

// Currency creates the currency command group.
func (c *Commands) Currency() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currency",
		Short: "Currency identifier commands",
		Long:  currencyLong,
	}

	cmd.PersistentFlags().Uint64("chain-id", chain.PopcateumMainnet, "Chain the token is deployed on")

	cmd.AddCommand(c.currencyID(), c.currencyParse(), c.currencyMulticall())

	return cmd
}

func (c *Commands) currencyID() *cobra.Command {
	return &cobra.Command{
		Use:   "id <BROCK|address>",
		Short: "Print the canonical identifier of a currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chainID, _ := cmd.Flags().GetUint64("chain-id")

			cur, err := currency.Parse(chainID, args[0])
			if err != nil {
				return err
			}
			id, err := currency.ID(cur)
			if err != nil {
				return err
			}
			cmd.Println(id)

			return nil
		},
	}
}

func (c *Commands) currencyParse() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <id>",
		Short: "Describe the currency behind an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chainID, _ := cmd.Flags().GetUint64("chain-id")

			cur, err := currency.Parse(chainID, args[0])
			if err != nil {
				return err
			}

			switch v := cur.(type) {
			case *currency.Token:
				cmd.Printf("Token:   %s\n", v.Address().Hex())
				cmd.Printf("Chain:   %s\n", chain.Name(v.ChainID()))
			default:
				cmd.Printf("Native:  %s (%s, %d decimals)\n", cur.Symbol(), cur.Name(), cur.Decimals())
			}

			return nil
		},
	}
}

func (c *Commands) currencyMulticall() *cobra.Command {
	return &cobra.Command{
		Use:   "multicall",
		Short: "Print the multicall contract of the chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chainID, _ := cmd.Flags().GetUint64("chain-id")

			addr, err := currency.MulticallAddress(chainID)
			if err != nil {
				return err
			}
			cmd.Println(addr.Hex())

			return nil
		},
	}
}
