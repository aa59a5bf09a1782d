package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pagemigrate/pagemigrate/pkg/cli/internal/output"
	"github.com/pagemigrate/pagemigrate/pkg/pipeline"
)

var (
	validateMappings []string
	validateNoColor  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the function expressions of mapping files",
	Long: `Parse every function expression and selector of the mapping files without
running them. Syntax errors and plugins that fail to load are errors;
functions no library provides are warnings because they are skipped at run
time. Exits with status 1 when there are errors.`,
	Example: `  pagemigrate validate -m 'mappings/**/*.xml'`,
	Args:    cobra.NoArgs,
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringArrayVarP(&validateMappings, "mapping", "m", nil, "Mapping file or glob (repeatable, default from config)")
	validateCmd.Flags().BoolVar(&validateNoColor, "no-color", false, "Disable colored output")
}

type validateProblem struct {
	Level      string `json:"level"`
	Template   string `json:"template"`
	Property   string `json:"property,omitempty"`
	Expression string `json:"expression,omitempty"`
	Message    string `json:"message"`
}

type validateReport struct {
	Templates int               `json:"templates"`
	Errors    int               `json:"errors"`
	Warnings  int               `json:"warnings"`
	Problems  []validateProblem `json:"problems"`
}

func runValidate(cmd *cobra.Command, _ []string) error {
	file, err := loadMappings(validateMappings)
	if err != nil {
		return err
	}

	report := validateReport{Templates: len(file.Templates), Problems: []validateProblem{}}

	run, err := startRun(file, nil, "")
	if err != nil {
		// Report the broken plugin and check the rest against the
		// built-in library only.
		report.Problems = append(report.Problems, validateProblem{Level: "error", Message: err.Error()})
		report.Errors++
		if run, err = pipeline.NewRun(&pipeline.Environment{}, nil); err != nil {
			return err
		}
	}
	d := run.Executor.Dispatcher()

	for i := range file.Templates {
		for _, p := range pipeline.Validate(&file.Templates[i], d) {
			level := "error"
			if p.Warning {
				level = "warning"
				report.Warnings++
			} else {
				report.Errors++
			}
			report.Problems = append(report.Problems, validateProblem{
				Level:      level,
				Template:   p.Template,
				Property:   p.Property,
				Expression: p.Expression,
				Message:    p.Err.Error(),
			})
		}
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := output.JSON(w, report); err != nil {
			return err
		}
	} else {
		if validateNoColor {
			color.NoColor = true
		}
		levels := map[string]*color.Color{
			"error":   color.New(color.FgRed, color.Bold),
			"warning": color.New(color.FgYellow),
		}
		for _, p := range report.Problems {
			where := p.Template
			switch {
			case p.Template == "":
				where = "plugins"
			case p.Property != "":
				where += "." + p.Property
			default:
				where += " selector"
			}
			levels[p.Level].Fprint(w, p.Level)
			fmt.Fprintf(w, ": %s: %s\n", where, p.Message)
		}
		summary := color.New(color.FgGreen)
		if report.Errors > 0 {
			summary = levels["error"]
		}
		summary.Fprintf(w, "%d templates, %d errors, %d warnings\n", report.Templates, report.Errors, report.Warnings)
	}

	if report.Errors > 0 {
		return fmt.Errorf("%w: %d errors", ErrProblems, report.Errors)
	}
	return nil
}
