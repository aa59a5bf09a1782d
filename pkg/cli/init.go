package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pagemigrate/pagemigrate/pkg/config"
)

var (
	initOutput      string
	initForce       bool
	initInteractive bool
	initNoSample    bool
)

// sampleMapping is written next to a new project config.
const sampleMapping = `<?xml version="1.0" encoding="utf-8"?>
<PageTransformation>
  <WebParts>
    <WebPart Type="ImageWebPart">
      <Properties>
        <Property Name="ImageUrl" Type="string" Functions="{ServerRelativeImageUrl} = ReturnServerRelativePath({ImageUrl}); {ImageFileName} = ReturnFileName({ImageUrl})" />
        <Property Name="Title" Type="string" Functions="{Caption} = Coalesce({Title}, {ImageFileName})" />
      </Properties>
      <Mappings Selector="Evaluate('value == &quot;&quot; ? &quot;Placeholder&quot; : &quot;Image&quot;', {ImageUrl})">
        <Mapping Name="Image" Default="true" />
        <Mapping Name="Placeholder" />
      </Mappings>
    </WebPart>
    <WebPart Type="ContentEditorWebPart">
      <Properties>
        <Property Name="Content" Type="string" Functions="TextCleanup({Content}); {PlainText} = StripHtml({Content})" />
        <Property Name="ShowTitle" Type="bool" Functions="ReturnTrue()" />
      </Properties>
      <Mappings Selector="IsEmpty({PlainText})">
        <Mapping Name="true" />
        <Mapping Name="false" Default="true" />
      </Mappings>
    </WebPart>
  </WebParts>
</PageTransformation>
`

// sampleMappingPath is where init puts the sample mapping file.
const sampleMappingPath = "mappings/webparts.xml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter pagemigrate.yaml and sample mapping file",
	Example: `  # Create pagemigrate.yaml and mappings/webparts.xml
  pagemigrate init

  # Answer a few questions first
  pagemigrate init --interactive`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutput, "output", "o", config.DefaultFileNames[0], "Output filename")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Interactive mode - prompts for configuration")
	initCmd.Flags().BoolVar(&initNoSample, "no-sample", false, "Do not write the sample mapping file")
}

func runInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(initOutput); err == nil && !initForce {
		return fmt.Errorf("%w: %s", ErrConfigExists, initOutput)
	}

	project := config.NewDefault()
	if initInteractive {
		if err := askProject(project); err != nil {
			return err
		}
	}

	if err := config.Save(initOutput, project); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created %s\n", initOutput)

	if initNoSample {
		return nil
	}
	sample := filepath.Join(filepath.Dir(initOutput), sampleMappingPath)
	if _, err := os.Stat(sample); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(sample), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(sample, []byte(sampleMapping), 0o644); err != nil {
		return fmt.Errorf("failed to write sample mapping: %w", err)
	}
	fmt.Fprintf(w, "Created %s\n", sample)
	return nil
}

func askProject(project *config.Config) error {
	pattern := project.Mappings[0]
	level := project.Log.Level

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Where are the mapping files?").
				Placeholder("mappings/**/*.xml").
				Value(&pattern).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("a mapping file or glob is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Plugin directory").
				Description("Relative plugin paths resolve against it. Leave empty for the executable's directory.").
				Value(&project.PluginDir),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&level),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	project.Mappings = []string{pattern}
	project.Log.Level = level
	return nil
}
