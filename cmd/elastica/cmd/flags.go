package cmd

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// enumValue is a string flag restricted to a fixed set of values. Bad values
// are rejected while the command line is parsed.
type enumValue struct {
	allowed []string
	value   string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(def string, allowed ...string) *enumValue {
	return &enumValue{allowed: allowed, value: def}
}

func (e *enumValue) String() string {
	return e.value
}

func (e *enumValue) Set(s string) error {
	if !slices.Contains(e.allowed, s) {
		return fmt.Errorf("must be one of: %s", strings.Join(e.allowed, ", "))
	}
	e.value = s
	return nil
}

// Type is "string" so the flag stays readable through FlagSet.GetString.
func (e *enumValue) Type() string {
	return "string"
}

func addViaFlag(flags *pflag.FlagSet) {
	flags.Var(newEnumValue(viaNative, callPaths...), "via", "Call path: "+strings.Join(callPaths, ", "))
}

var negativeOperand = regexp.MustCompile(`^-[0-9.]`)

// escapeOperands rewrites an add invocation so operands with a leading minus
// sign reach the command as positionals instead of being read as shorthand
// flags. Flags keep their values; operands keep their order after a "--".
func escapeOperands(root *cobra.Command, args []string) []string {
	sub, _, err := root.Find(args)
	if err != nil || sub.Name() != "add" || slices.Contains(args, "--") {
		return args
	}

	lookup := func(arg string) *pflag.Flag {
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if strings.HasPrefix(arg, "--") {
			if f := sub.Flags().Lookup(name); f != nil {
				return f
			}
			return root.PersistentFlags().Lookup(name)
		}
		if f := sub.Flags().ShorthandLookup(name); f != nil {
			return f
		}
		return root.PersistentFlags().ShorthandLookup(name)
	}

	var (
		seenCmd  bool
		flags    []string
		operands []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case !seenCmd && arg == sub.Name():
			seenCmd = true
		case negativeOperand.MatchString(arg) || !strings.HasPrefix(arg, "-"):
			operands = append(operands, arg)
		default:
			flags = append(flags, arg)
			f := lookup(arg)
			if f != nil && f.NoOptDefVal == "" && !strings.Contains(arg, "=") && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		}
	}

	escaped := append([]string{sub.Name()}, flags...)
	escaped = append(escaped, "--")
	return append(escaped, operands...)
}
