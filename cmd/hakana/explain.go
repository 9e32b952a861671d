package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slackhq/hakana-sub000/internal/analyzer"
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/ttype"
)

var explainCmd = &cobra.Command{
	Use:   "explain <type> <type>",
	Short: "Print the combiner/comparator trace between two builtin scalar types",
	Long: `explain is a teaching aid, not a product feature: it takes two of
the builtin scalar type names (int, string, bool, float, null, mixed)
and prints their union combination and mutual containment, so the
reader can see what internal/ttype/combiner and internal/comparator
actually decide without wiring up a whole source file.`,
	Args: cobra.ExactArgs(2),
	RunE: runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	a, err := namedScalar(args[0])
	if err != nil {
		return err
	}
	b, err := namedScalar(args[1])
	if err != nil {
		return err
	}

	cb := codeinfo.NewCodebase()
	combined := analyzer.CombineUnions(ttype.New(a), ttype.New(b), cb)
	aContainsB, _ := analyzer.IntersectUnions(ttype.New(a), ttype.New(b), cb)

	fmt.Fprintf(cmd.OutOrStdout(), "%s | %s  combines to  %s\n", a, b, combined)
	fmt.Fprintf(cmd.OutOrStdout(), "intersection: %s\n", aContainsB)
	fmt.Fprintf(cmd.OutOrStdout(), "%s contained by %s: %v\n", a, b, analyzer.IsContainedByFor(cb)(a, b))
	fmt.Fprintf(cmd.OutOrStdout(), "%s contained by %s: %v\n", b, a, analyzer.IsContainedByFor(cb)(b, a))
	return nil
}

func namedScalar(name string) (ttype.Atomic, error) {
	switch name {
	case "int":
		return ttype.Int{}, nil
	case "string":
		return ttype.String{}, nil
	case "bool":
		return ttype.Bool{}, nil
	case "float":
		return ttype.Float{}, nil
	case "null":
		return ttype.Null{}, nil
	case "mixed":
		return ttype.MixedWithFlags{Any: true}, nil
	default:
		return nil, fmt.Errorf("unknown scalar type %q (want int|string|bool|float|null|mixed)", name)
	}
}
