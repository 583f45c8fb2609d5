package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/pipeline"
	"github.com/matzehuels/bracketview/pkg/render"
	"github.com/matzehuels/bracketview/pkg/render/svg"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      fetchFlags
		output     string
		formatsStr string
	)
	opts := c.baseOptions()

	cmd := &cobra.Command{
		Use:   "render <source>",
		Short: "Render a bracket to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a bracket.

The board view (-t board) draws the columns of match cards with their
connector lines. The node-link view (-t nodelink) draws the bracket as a
Graphviz graph of matches pointing at their next match.

With several formats, one file per format is written next to the output
base path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], flags, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", opts.VizType, "visualization type: board (default), nodelink")
	cmd.Flags().StringVar(&opts.Theme, "theme", opts.Theme, "board theme: "+strings.Join(svg.Themes(), ", "))
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show round and half in node-link labels")
	flags.register(cmd)
	layoutFlags(cmd, &opts)
	completeRenderFlags(cmd)
	return cmd
}

func (c *CLI) runRender(ctx context.Context, arg string, flags fetchFlags, opts pipeline.Options, output string) error {
	for _, err := range []error{
		pipeline.ValidateVizType(opts.VizType),
		pipeline.ValidateFormats(opts.Formats),
		pipeline.ValidateTheme(opts.Theme),
	} {
		if err != nil {
			return err
		}
	}
	if needsConverter(opts.Formats) && !render.Available() {
		return errors.New(errors.ErrCodeUnsupported, "png and pdf output require rsvg-convert (brew install librsvg, apt install librsvg2-bin)")
	}

	runner, matches, _, err := c.load(ctx, arg, flags, &opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	layout, err := runner.Layout(ctx, matches, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	base := basePath(output, arg, opts.VizType)
	var written []string
	for _, format := range opts.Formats {
		path := base + "." + format
		if len(opts.Formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %s view", opts.VizType)
	for _, p := range written {
		printFile(p)
	}
	printStats(len(matches), len(layout.Result.Lines), hit)
	return nil
}

// basePath derives the output path without extension. An explicit output
// loses a known format extension; otherwise the name comes from the match
// file or the championship id.
func basePath(output, arg, vizType string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	name := "championship-" + arg
	if _, err := strconv.Atoi(arg); err != nil {
		name = strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
	}
	if vizType == pipeline.VizTypeNodelink {
		name += "_nodelink"
	}
	return name
}

func needsConverter(formats []string) bool {
	for _, f := range formats {
		if f == pipeline.FormatPNG || f == pipeline.FormatPDF {
			return true
		}
	}
	return false
}
