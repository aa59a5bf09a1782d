package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pagemigrate/pagemigrate/pkg/cli/internal/output"
	"github.com/pagemigrate/pagemigrate/pkg/cli/internal/parse"
	"github.com/pagemigrate/pagemigrate/pkg/config"
	"github.com/pagemigrate/pagemigrate/pkg/mapping"
	"github.com/pagemigrate/pagemigrate/pkg/pipeline"
)

var (
	transformMappings   []string
	transformType       string
	transformProperties string
	transformSet        []string
	transformPluginDir  string
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Run the mapping of one control and print the result",
	Long: `Run the function pipelines and the selector of the mapping template for a
control type against the control's properties.

Properties are read from a JSON object (-p, "-" for stdin) and --set flags;
--set wins over the file.`,
	Example: `  # Transform an image web part
  pagemigrate transform -m mappings/webparts.xml -t ImageWebPart -p image.json

  # Inline properties
  pagemigrate transform -t ContentEditor --set Content='<p>Hi</p>' --set Title=News`,
	Args: cobra.NoArgs,
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().StringArrayVarP(&transformMappings, "mapping", "m", nil, "Mapping file or glob (repeatable, default from config)")
	transformCmd.Flags().StringVarP(&transformType, "type", "t", "", "Control type to transform")
	transformCmd.Flags().StringVarP(&transformProperties, "properties", "p", "", "JSON file with the control's properties (- for stdin)")
	transformCmd.Flags().StringArrayVar(&transformSet, "set", nil, "Set a control property: name=value (repeatable)")
	transformCmd.Flags().StringVar(&transformPluginDir, "plugin-dir", "", "Directory relative plugin paths resolve against")
	_ = transformCmd.MarkFlagRequired("type")
}

// transformResult is the JSON shape of a transform.
type transformResult struct {
	Run        string            `json:"run"`
	Control    string            `json:"control"`
	Properties map[string]string `json:"properties"`
	Added      []string          `json:"added,omitempty"`
	Selector   *string           `json:"selector,omitempty"`
	Mapping    string            `json:"mapping,omitempty"`
}

func runTransform(cmd *cobra.Command, _ []string) error {
	file, err := loadMappings(transformMappings)
	if err != nil {
		return err
	}
	tmpl, ok := file.Template(transformType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoTemplate, transformType)
	}

	control, err := readControl(cmd.InOrStdin(), transformProperties, transformSet)
	if err != nil {
		return err
	}

	run, err := startRun(file, control, transformPluginDir)
	if err != nil {
		return err
	}
	res, err := run.Transform(tmpl, control)
	if err != nil {
		return err
	}

	out := transformResult{
		Run:        run.ID,
		Control:    tmpl.Type,
		Properties: res.Properties,
		Added:      res.Added,
	}
	if res.HasSelector {
		sel := res.Selector
		out.Selector = &sel
	}
	if opt, ok := res.Template.SelectMapping(res.Selector); ok {
		out.Mapping = opt.Name
	}

	w := cmd.OutOrStdout()
	if cfg.Output == config.OutputJSON {
		return output.JSON(w, out)
	}
	printTransform(w, out)
	return nil
}

func printTransform(w io.Writer, out transformResult) {
	names := make([]string, 0, len(out.Properties))
	for name := range out.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := output.Table(w)
	fmt.Fprintln(tw, "PROPERTY\tVALUE")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", name, strconv.Quote(out.Properties[name]))
	}
	_ = tw.Flush()

	if out.Selector != nil {
		fmt.Fprintf(w, "\nSelector: %s\n", *out.Selector)
	}
	if out.Mapping != "" {
		fmt.Fprintf(w, "Mapping:  %s\n", out.Mapping)
	}
}

// loadMappings loads the mapping files named by patterns, or by the
// configured patterns when none are given.
func loadMappings(patterns []string) (*mapping.File, error) {
	if len(patterns) == 0 {
		patterns = cfg.Mappings
	}
	file, err := mapping.LoadGlob(patterns...)
	if err != nil {
		return nil, err
	}
	logger.Debug("mapping files loaded", "patterns", patterns, "templates", len(file.Templates))
	return file, nil
}

// readControl builds a control's property values from a JSON object file
// and name=value assignments. Non-string JSON values are kept in their
// JSON form.
func readControl(stdin io.Reader, path string, assignments []string) (map[string]string, error) {
	control := make(map[string]string)

	if path != "" {
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidControl, err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidControl, path, err)
		}
		for name, v := range raw {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				control[name] = s
				continue
			}
			if string(v) == "null" {
				control[name] = ""
				continue
			}
			control[name] = string(v)
		}
	}

	set, err := parse.Assignments(assignments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidControl, err)
	}
	for name, v := range set {
		control[name] = v
	}
	return control, nil
}

// startRun constructs the libraries of a run for the plugins file declares.
func startRun(file *mapping.File, control map[string]string, pluginDir string) (*pipeline.Run, error) {
	if pluginDir == "" {
		pluginDir = cfg.PluginDir
	}
	var loaderOpts []pipeline.LoaderOption
	if pluginDir != "" {
		loaderOpts = append(loaderOpts, pipeline.WithBaseDir(pluginDir))
	}

	env := &pipeline.Environment{
		Context:   runContext{Mappings: file.Source, Version: Version},
		Control:   control,
		Observers: []slog.Handler{logHandler()},
	}
	return pipeline.NewRun(env, file.Plugins, pipeline.WithPluginLoader(pipeline.NewLoader(loaderOpts...)))
}

// runContext is the transformation context handed to function libraries.
type runContext struct {
	Mappings string
	Version  string
}
