package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var astCmd = &cobra.Command{
	Use:   "ast",
	Short: "Compile the rules file and print its syntax tree",
	Run: func(cmd *cobra.Command, args []string) {
		prog := compileRules()
		fmt.Println(prog.PrettyString())
	},
}
