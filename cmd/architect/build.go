package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/itinerary-architect/internal/studio"
)

// loadEdits reads a YAML list of studio commands.
func loadEdits(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var edits []string
	if err := yaml.Unmarshal(b, &edits); err != nil {
		return nil, fmt.Errorf("parse edits %s: %w", path, err)
	}
	return edits, nil
}

func buildCmd(a *app) *cobra.Command {
	var (
		editsPath  string
		pdf, jpeg  bool
		html       bool
		landscape  bool
		fillImages bool
		prompt     string
	)

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Upload a document, apply edits and export the brochure in one go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var edits []string
			if editsPath != "" {
				var err error
				if edits, err = loadEdits(editsPath); err != nil {
					return err
				}
			}
			if !pdf && !jpeg && !html {
				pdf = true
			}

			sh := &shell{ctrl: a.controller(nil), out: cmd.OutOrStdout(), outDir: a.cfg.Output.Dir}
			if err := sh.exec(ctx, "upload "+quote(args[0])); err != nil {
				return fmt.Errorf("%s: %w", studio.Describe(err), err)
			}
			for i, line := range edits {
				if err := sh.exec(ctx, line); err != nil {
					return fmt.Errorf("edit %d (%s): %w", i+1, line, err)
				}
			}
			if fillImages {
				if _, err := sh.ctrl.RegenerateMissing(ctx, prompt, nil); err != nil {
					a.log.Warn().Err(err).Msg("some day images could not be generated")
					_, _ = sh.ctrl.Dispatch(studio.DismissError{})
				}
			}
			if sh.ctrl.State().Step != studio.StepPreview {
				if _, err := sh.ctrl.Dispatch(studio.ShowPreview{}); err != nil {
					return err
				}
			}

			opts := studio.ExportOptions{Landscape: landscape}
			for _, k := range []struct {
				on   bool
				kind studio.ExportKind
			}{{pdf, studio.ExportPDF}, {jpeg, studio.ExportJPEG}, {html, studio.ExportHTML}} {
				if !k.on {
					continue
				}
				path, err := sh.ctrl.Export(ctx, k.kind, opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&editsPath, "edits", "", "YAML list of studio commands applied before export")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "export the PDF brochure (default when no format is chosen)")
	cmd.Flags().BoolVar(&jpeg, "jpeg", false, "export the cover flyer as JPEG")
	cmd.Flags().BoolVar(&html, "html", false, "export the brochure as standalone HTML")
	cmd.Flags().BoolVar(&landscape, "landscape", false, "landscape PDF pages")
	cmd.Flags().BoolVar(&fillImages, "images", false, "generate images for days without one")
	cmd.Flags().StringVar(&prompt, "image-prompt", "", "extra direction for generated images")
	return cmd
}
