package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/analogrelay/elastica-interop/boundary"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add A B",
		Short: "Add two 32-bit integers",
		Long: `Adds two signed 32-bit integers. The sum wraps on overflow.
Arguments that are not integers in the i32 range are rejected.`,
		Example: `  elastica add 2 3
  elastica add -2147483648 -1 --via wasm
  elastica add --via cgo -- -7 4`,
		Args: cobra.ExactArgs(2),
		RunE: runAdd,
	}
	addViaFlag(cmd.Flags())
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	via, err := cmd.Flags().GetString("via")
	if err != nil {
		return err
	}

	a, b, err := parseOperands(args)
	if err != nil {
		return err
	}

	add, closeAdder, err := newAdder(cmd.Context(), via)
	if err != nil {
		return err
	}
	defer closeAdder()

	sum, err := add(cmd.Context(), a, b)
	if err != nil {
		return fmt.Errorf("add via %s: %w", via, err)
	}
	logger.Debug("add", "via", via, "a", a, "b", b, "sum", sum)

	fmt.Fprintln(cmd.OutOrStdout(), sum)
	return nil
}

// parseOperands runs the command line arguments through the same marshaling
// rules a host call gets.
func parseOperands(args []string) (int32, int32, error) {
	native, err := boundary.Marshal(boundary.AddFunc(), []any{json.Number(args[0]), json.Number(args[1])})
	if err != nil {
		return 0, 0, err
	}
	return native[0].(int32), native[1].(int32), nil
}
