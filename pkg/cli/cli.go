package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/whisker/pkg/model"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Default().Warn("failed to load .env", "error", err)
	}

	return run(ctx, argv, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) *Error {
	cmd := &cli.Command{
		Name:      "whisker",
		Usage:     "Discover random cat breeds and ban the ones you are tired of",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		// ban tokens such as temperaments contain commas
		DisableSliceFlagSeparator: true,
		Commands: []*cli.Command{
			playCommand(),
			serveCommand(),
			breedsCommand(),
			discoverCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Debug("command failed", "error", err)
		msg := model.UserMessage(err)
		fmt.Fprintf(stderr, "Error: %s\n", msg)
		return &Error{
			Code:    1,
			Message: msg,
		}
	}

	return nil
}
