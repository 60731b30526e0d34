package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/itinerary-architect/internal/studio"
)

func studioCmd(a *app) *cobra.Command {
	var script string

	cmd := &cobra.Command{
		Use:   "studio [file]",
		Short: "Interactive brochure studio; optionally upload a file first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var in io.Reader = cmd.InOrStdin()
			interactive := script == ""
			if !interactive {
				f, err := os.Open(script)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			lines := bufio.NewScanner(in)

			var prompt func(context.Context) (string, error)
			if interactive {
				prompt = func(context.Context) (string, error) {
					fmt.Fprint(out, "Gemini API key: ")
					if !lines.Scan() {
						return "", io.EOF
					}
					return lines.Text(), nil
				}
			}

			ctrl := a.controller(prompt)
			sh := &shell{ctrl: ctrl, out: out, outDir: a.cfg.Output.Dir, bars: interactive && !color.NoColor}
			if sh.bars {
				watchLoading(ctrl, cmd.ErrOrStderr())
			}
			a.log.Info().Bool("interactive", interactive).Msg("studio session started")

			if len(args) == 1 {
				if err := sh.exec(ctx, "upload "+quote(args[0])); err != nil {
					if !interactive {
						return err
					}
					sh.report(err)
				}
			}
			if interactive {
				fmt.Fprintln(out, "Type help for commands.")
			}
			return runLines(ctx, sh, lines, interactive)
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "run studio commands from a file and exit on the first failure")
	return cmd
}

// runLines executes commands until input ends or quit. Interactive sessions report failures
// and continue; scripts stop at the first one.
func runLines(ctx context.Context, sh *shell, lines *bufio.Scanner, interactive bool) error {
	for n := 1; ; n++ {
		if interactive {
			fmt.Fprintf(sh.out, "%s> ", sh.ctrl.State().Step)
		}
		if !lines.Scan() {
			return lines.Err()
		}
		line := strings.TrimSpace(lines.Text())
		err := sh.exec(ctx, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err == nil:
		case interactive:
			sh.report(err)
			_, _ = sh.ctrl.Dispatch(studio.DismissError{})
		default:
			return fmt.Errorf("line %d: %s: %w", n, line, err)
		}
	}
}

// watchLoading shows a spinner while the controller is busy.
func watchLoading(ctrl *studio.Controller, w io.Writer) {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	sp.Suffix = " working..."
	ctrl.Subscribe(func(s studio.State) {
		switch {
		case s.IsLoading && !sp.Active():
			sp.Start()
		case !s.IsLoading && sp.Active():
			sp.Stop()
		}
	})
}

// quote wraps s as a single shell word.
func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
