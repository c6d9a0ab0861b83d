package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	elastica "github.com/analogrelay/elastica-interop"
	"github.com/analogrelay/elastica-interop/boundary"
	"github.com/analogrelay/elastica-interop/wasmhost"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the exported module and available call paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := boundary.NewElasticaModule()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Module: %s %s\n", m.Name(), elastica.Version)
			for _, name := range m.Functions() {
				fn, _ := m.Lookup(name)
				fmt.Fprintf(out, "Function: %s%s -> %s\n", fn.Name, fn.Signature(), fn.Result)
			}
			fmt.Fprintf(out, "Wasm import: %s.%s\n", wasmhost.DefaultModuleName, wasmhost.HostFuncName)
			fmt.Fprintf(out, "Call paths: %s\n", strings.Join(availablePaths(), ", "))
			return nil
		},
	}
}
