package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/whisker/pkg/usecase/discovery"
	"github.com/m-mizutani/whisker/pkg/usecase/session"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func playCommand() *cli.Command {
	var (
		cfg         config
		historyFile string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "history-file",
			Usage:       "File to keep REPL input history in (empty disables history)",
			Value:       defaultHistoryFile(),
			Sources:     cli.EnvVars("WHISKER_HISTORY_FILE"),
			Destination: &historyFile,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "play",
		Usage: "Discover cats interactively in the terminal",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setup(ctx, c)

			if historyFile != "" {
				if err := os.MkdirAll(filepath.Dir(historyFile), 0o700); err != nil {
					return goerr.Wrap(err, "failed to create history directory", goerr.V("path", historyFile))
				}
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "whisker> ",
				HistoryFile:     historyFile,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdin:           io.NopCloser(c.Root().Reader),
				Stdout:          c.Root().Writer,
				Stderr:          c.Root().ErrWriter,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to start readline")
			}
			defer rl.Close()

			ctrl := session.NewController(discovery.New(cfg.newCatAPI()))
			return playSession(ctx, ctrl, &repl{
				ctrl:    ctrl,
				in:      rl,
				out:     rl.Stdout(),
				loading: spinnerLoading(c.Root().Writer),
			})
		},
	}
}

// playSession runs the controller for as long as the REPL is running
func playSession(ctx context.Context, ctrl *session.Controller, r *repl) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return ctrl.Run(ctx)
	})
	eg.Go(func() error {
		defer cancel()
		return r.run(ctx)
	})

	return eg.Wait()
}

func spinnerLoading(w io.Writer) func(msg string) func() {
	return func(msg string) func() {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
			spinner.WithWriter(w),
			spinner.WithSuffix(" "+msg),
			spinner.WithHiddenCursor(true),
		)
		s.Start()
		return s.Stop
	}
}

func defaultHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "whisker", "history")
}
