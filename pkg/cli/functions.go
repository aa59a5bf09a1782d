package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pagemigrate/pagemigrate/pkg/cli/internal/output"
	"github.com/pagemigrate/pagemigrate/pkg/pipeline"
)

var functionsMappings []string

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the functions mapping files can call",
	Long: `List the built-in functions. With -m, the plugins declared by the mapping
files are loaded and their functions listed too, qualified by plugin name.`,
	Args: cobra.NoArgs,
	RunE: runFunctions,
}

func init() {
	rootCmd.AddCommand(functionsCmd)
	functionsCmd.Flags().StringArrayVarP(&functionsMappings, "mapping", "m", nil, "Mapping files whose plugins to list")
}

type functionGroup struct {
	Library   string   `json:"library"`
	Type      string   `json:"type,omitempty"`
	Functions []string `json:"functions"`
}

func runFunctions(cmd *cobra.Command, _ []string) error {
	run, err := pipeline.NewRun(&pipeline.Environment{}, nil)
	if err != nil {
		return err
	}
	groups := []functionGroup{{Library: "built-in", Functions: run.Executor.Dispatcher().BuiltIns()}}

	if len(functionsMappings) > 0 {
		file, err := loadMappings(functionsMappings)
		if err != nil {
			return err
		}
		withPlugins, err := startRun(file, nil, "")
		if err != nil {
			return err
		}
		for _, p := range withPlugins.Executor.Dispatcher().Plugins().List() {
			qualified := make([]string, 0)
			for _, fn := range p.Functions() {
				qualified = append(qualified, p.Name+"."+fn)
			}
			groups = append(groups, functionGroup{Library: p.Name, Type: p.TypeName, Functions: qualified})
		}
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return output.JSON(w, groups)
	}

	title := cases.Title(language.English)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := title.String(g.Library) + " functions"
		if g.Type != "" {
			header += " (" + g.Type + ")"
		}
		fmt.Fprintf(w, "%s:\n", header)
		for _, fn := range g.Functions {
			fmt.Fprintf(w, "  %s\n", fn)
		}
	}
	return nil
}
