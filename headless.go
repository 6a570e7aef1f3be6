package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"medscribe/clipboard"
	"medscribe/config"
	"medscribe/generate"
	"medscribe/log"
)

func newGenerateCmd(cfg *config.Config) *cobra.Command {
	var modeFlag string
	var copyFlag bool

	cmd := &cobra.Command{
		Use:   "generate [shorthand|-]",
		Short: "Stream one note to stdout",
		Long: "Stream one note to stdout. The shorthand comes from the arguments, " +
			"or from stdin when the only argument is '-' or stdin is not a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := generate.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			shorthand, err := readShorthand(args, cmd.InOrStdin(), stdinIsTerminal())
			if err != nil {
				return err
			}

			inj := newInjector(cfg)
			gen, err := do.Invoke[generate.Generator](inj)
			if err != nil {
				return err
			}

			log.SessionStart(cfg.Endpoint, string(mode), "")
			text, err := streamNote(cmd.Context(), cmd.OutOrStdout(), gen, generate.Request{Shorthand: shorthand, Mode: mode})
			if err != nil {
				log.Errorf("generate: %v", err)
				log.SessionEnd(0)
				return err
			}
			log.NoteText(string(mode), text)
			log.SessionEnd(1)

			if copyFlag {
				w := do.MustInvoke[clipboard.Writer](inj)
				if err := w.Copy(text); err != nil {
					return fmt.Errorf("copy note: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", cfg.Mode, "expand or summarize")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "also copy the finished note to the clipboard")
	return cmd
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readShorthand joins args, or reads all of stdin for "-" or for no args
// with piped input. The result is trimmed and must not be empty.
func readShorthand(args []string, stdin io.Reader, stdinTTY bool) (string, error) {
	var text string
	switch {
	case len(args) == 1 && args[0] == "-", len(args) == 0 && !stdinTTY:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	case len(args) == 0:
		return "", errors.New("no shorthand given (pass it as an argument or pipe it on stdin)")
	default:
		text = strings.Join(args, " ")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", generate.ErrEmptyShorthand
	}
	return text, nil
}

// streamNote writes each new part of the note to w as it arrives and
// returns the full text.
func streamNote(ctx context.Context, w io.Writer, gen generate.Generator, req generate.Request) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sess := generate.NewSession(ctx, gen, req)

	var last string
	for snapshot := range sess.Updates() {
		// Snapshots only ever extend the previous one.
		if _, err := io.WriteString(w, snapshot[len(last):]); err != nil {
			cancel()
			sess.Wait()
			return last, fmt.Errorf("write note: %w", err)
		}
		last = snapshot
	}
	if err := sess.Wait(); err != nil {
		if last != "" {
			fmt.Fprintln(w)
		}
		return last, err
	}
	if last != "" && !strings.HasSuffix(last, "\n") {
		fmt.Fprintln(w)
	}
	return last, nil
}
