package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/whisker/pkg/model"
	"github.com/m-mizutani/whisker/pkg/usecase/session"
)

const replHelpText = `Commands:
  discover, d, <enter>   show another random cat
  ban <attribute>        ban name, origin, temperament or date of the current cat
  ban-token <token>      ban any value
  unban <token>|#<n>     remove a value (or the n-th entry of "bans") from the ban list
  bans                   show the ban list
  status                 show available breeds and banned count
  help                   show this help
  exit, quit             leave`

var errUnknownCommand = goerr.New("unknown command")

type replCommandKind int

const (
	replDiscover replCommandKind = iota
	replBan
	replBanToken
	replUnban
	replBans
	replStatus
	replHelp
	replExit
)

type replCommand struct {
	kind replCommandKind
	attr model.Attribute
	arg  string
}

// LineReader reads one line of user input
type LineReader interface {
	Readline() (string, error)
}

// parseCommand parses one REPL line. Token arguments keep their inner spaces.
func parseCommand(line string) (*replCommand, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return &replCommand{kind: replDiscover}, nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "discover", "d":
		return &replCommand{kind: replDiscover}, nil

	case "ban":
		attr := model.Attribute(strings.ToLower(rest))
		for _, a := range model.Attributes {
			if a == attr {
				return &replCommand{kind: replBan, attr: attr}, nil
			}
		}
		return nil, goerr.New("usage: ban name|origin|temperament|date")

	case "ban-token":
		token := unquote(rest)
		if strings.TrimSpace(token) == "" {
			return nil, goerr.New("usage: ban-token <token>")
		}
		return &replCommand{kind: replBanToken, arg: token}, nil

	case "unban":
		token := unquote(rest)
		if strings.TrimSpace(token) == "" {
			return nil, goerr.New("usage: unban <token>|#<n>")
		}
		return &replCommand{kind: replUnban, arg: token}, nil

	case "bans":
		return &replCommand{kind: replBans}, nil
	case "status":
		return &replCommand{kind: replStatus}, nil
	case "help", "?":
		return &replCommand{kind: replHelp}, nil
	case "exit", "quit", "q":
		return &replCommand{kind: replExit}, nil
	}

	return nil, goerr.Wrap(errUnknownCommand, "failed to parse command", goerr.V("command", name))
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// repl is the terminal front end of one session
type repl struct {
	ctrl    *session.Controller
	in      LineReader
	out     io.Writer
	loading func(msg string) (stop func())
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, titleStyle.Render("Whisker - discover cats"))
	fmt.Fprintln(r.out, hintStyle.Render("Type help for commands. Press enter for another cat."))

	st, err := r.wait(ctx, "Loading cat breeds...")
	if err != nil {
		return err
	}
	r.printState(st)

	for {
		line, err := r.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read input")
		}

		cmd, err := parseCommand(line)
		if errors.Is(err, errUnknownCommand) {
			name, _, _ := strings.Cut(strings.TrimSpace(line), " ")
			fmt.Fprintln(r.out, errorStyle.Render(fmt.Sprintf("unknown command %q, type help for the list of commands", name)))
			continue
		}
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			continue
		}

		if cmd.kind == replExit {
			return nil
		}
		if err := r.exec(ctx, cmd); err != nil {
			return err
		}
	}
}

func (r *repl) exec(ctx context.Context, cmd *replCommand) error {
	switch cmd.kind {
	case replDiscover:
		if err := r.ctrl.Discover(ctx); err != nil {
			return r.printCommandError(err)
		}
		st, err := r.wait(ctx, "Finding a cat...")
		if err != nil {
			return err
		}
		r.printState(st)

	case replBan:
		current := r.ctrl.Snapshot().Current
		if current == nil {
			fmt.Fprintln(r.out, errorStyle.Render("No cat is displayed yet."))
			return nil
		}
		token, err := current.Token(cmd.attr)
		if err != nil {
			return err
		}
		return r.ban(ctx, token)

	case replBanToken:
		return r.ban(ctx, cmd.arg)

	case replUnban:
		return r.unban(ctx, cmd.arg)

	case replBans:
		tokens := r.ctrl.Snapshot().Bans.Tokens()
		if len(tokens) == 0 {
			fmt.Fprintln(r.out, "Ban list is empty.")
			return nil
		}
		for i, token := range tokens {
			fmt.Fprintf(r.out, "%d. %s\n", i+1, token)
		}

	case replStatus:
		st := r.ctrl.Snapshot()
		fmt.Fprintf(r.out, "Available breeds: %d | Banned: %d\n", len(st.Catalog), st.Bans.Len())

	case replHelp:
		fmt.Fprintln(r.out, replHelpText)
	}

	return nil
}

func (r *repl) ban(ctx context.Context, token string) error {
	if err := r.ctrl.Ban(ctx, token); err != nil {
		return r.printCommandError(err)
	}
	fmt.Fprintf(r.out, "Banned: %s\n", token)
	return nil
}

func (r *repl) unban(ctx context.Context, arg string) error {
	token := arg
	bans := r.ctrl.Snapshot().Bans

	if ref, ok := strings.CutPrefix(arg, "#"); ok {
		tokens := bans.Tokens()
		n, err := strconv.Atoi(ref)
		if err != nil || n < 1 || n > len(tokens) {
			fmt.Fprintf(r.out, "%s\n", errorStyle.Render(fmt.Sprintf("No ban entry %s, see bans", arg)))
			return nil
		}
		token = tokens[n-1]
	}

	if !bans.Contains(token) {
		fmt.Fprintf(r.out, "Not in ban list: %s\n", token)
		return nil
	}
	if err := r.ctrl.Unban(ctx, token); err != nil {
		return r.printCommandError(err)
	}
	fmt.Fprintf(r.out, "Unbanned: %s\n", token)
	return nil
}

// printCommandError shows rejected commands to the user. Errors that end the
// session are returned.
func (r *repl) printCommandError(err error) error {
	switch {
	case errors.Is(err, session.ErrBusy):
		fmt.Fprintln(r.out, errorStyle.Render(session.ErrBusy.Error()))
	case errors.Is(err, model.ErrCatalogNotReady), errors.Is(err, model.ErrEmptyToken):
		fmt.Fprintln(r.out, errorStyle.Render(model.UserMessage(err)))
	default:
		return err
	}
	return nil
}

func (r *repl) wait(ctx context.Context, msg string) (session.State, error) {
	stop := r.loading(msg)
	defer stop()
	return r.ctrl.WaitIdle(ctx)
}

func (r *repl) printState(st session.State) {
	switch {
	case st.CatalogErr != nil:
		fmt.Fprintln(r.out, errorStyle.Render(model.UserMessage(st.CatalogErr)))
		fmt.Fprintln(r.out, hintStyle.Render("Check your API key and restart."))

	case st.Err != nil:
		fmt.Fprintln(r.out, errorStyle.Render(model.UserMessage(st.Err)))
		fmt.Fprintln(r.out, hintStyle.Render("Type discover to try again."))

	case st.Current != nil:
		fmt.Fprintln(r.out, renderCard(st.Current))

	case st.CatalogReady && len(st.Catalog) == 0:
		fmt.Fprintln(r.out, "No cat breeds available.")
	}
}
