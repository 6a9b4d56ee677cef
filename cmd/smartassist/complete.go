package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smartassist/internal/completion"
	"smartassist/internal/document"
	"smartassist/internal/javaparse"
	"smartassist/internal/project"
	"smartassist/internal/subtype"
	"smartassist/internal/syntax"
)

type cursorFlags struct {
	offset int
	marker string
}

func (f *cursorFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.offset, "offset", "o", -1, "Byte offset of the cursor")
	cmd.Flags().StringVarP(&f.marker, "marker", "m", "", "Cursor marker inside the file; removed before completion")
}

var (
	expectFlags   cursorFlags
	completeFlags cursorFlags
	completeJSON  bool
)

func init() {
	expectFlags.register(expectCmd)
	completeFlags.register(completeCmd)
	completeCmd.Flags().BoolVar(&completeJSON, "json", false, "Print proposals as JSON")
}

// request reads path and places the cursor from the flags.
func (f *cursorFlags) request(path string, p *project.Project) (*completion.Context, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	offset := f.offset
	if f.marker != "" {
		var text string
		text, offset = document.ExtractMarker(string(doc.Bytes()), f.marker)
		if offset < 0 {
			return nil, fmt.Errorf("marker %q not found in %s", f.marker, path)
		}
		doc = document.FromString(text)
	}
	if offset < 0 || offset > doc.Len() {
		return nil, fmt.Errorf("cursor offset %d outside %s (size %d); use --offset or --marker", offset, path, doc.Len())
	}
	return &completion.Context{
		Source:   syntax.Source{Path: path, Text: doc.Bytes(), Cursor: offset},
		Document: doc,
		Offset:   offset,
		Project:  p,
	}, nil
}

func (a *app) orchestrator() (*completion.Orchestrator, error) {
	parser, err := javaparse.New(javaparse.WithLogger(a.log), javaparse.WithCacheSize(a.cfg.Completion.ParseCacheSize))
	if err != nil {
		return nil, err
	}
	opts := []completion.Option{
		completion.WithTimeout(a.cfg.Timeout()),
		completion.WithLogger(a.log),
	}
	if len(a.cfg.Completion.ExcludedTypes) > 0 {
		opts = append(opts, completion.WithExcludedTypes(a.cfg.Completion.ExcludedTypes...))
	}
	return completion.NewOrchestrator(parser, subtype.New(a.log), opts...), nil
}

var expectCmd = &cobra.Command{
	Use:   "expect <file>",
	Short: "Print the type expected at the cursor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.loadProject(ctx)
		if err != nil {
			return err
		}
		req, err := expectFlags.request(args[0], p)
		if err != nil {
			return err
		}
		orch, err := a.orchestrator()
		if err != nil {
			return err
		}

		expected := orch.ExpectedType(ctx, req)
		if expected == nil {
			fmt.Println("No expected type at the cursor.")
			return nil
		}
		fmt.Printf("%s\t%s\n", expected.QualifiedName(), expected.Signature)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <file>",
	Short: "Print completion proposals at the cursor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.loadProject(ctx)
		if err != nil {
			return err
		}
		req, err := completeFlags.request(args[0], p)
		if err != nil {
			return err
		}
		orch, err := a.orchestrator()
		if err != nil {
			return err
		}

		engine := completion.NewEngine(orch, completion.NewLambdaComputer(orch))
		proposals := engine.Complete(ctx, req)

		if completeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(proposals)
		}
		if len(proposals) == 0 {
			fmt.Println("No proposals.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, prop := range proposals {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", prop.Relevance, prop.Kind, prop.Label, prop.Completion)
		}
		return w.Flush()
	},
}
