package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/samber/do/v2"

	"github.com/listenupapp/tagengine/internal/config"
	"github.com/listenupapp/tagengine/internal/di"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/logger"
	"github.com/listenupapp/tagengine/internal/service"
)

const usage = `Usage: tagadmin [global flags] <command> [flags] [args]

Commands:
  list          -scope S                           list tags in a scope
  create        -scope S [-category C] NAME        create a tag
  rename        ID NEW_NAME                        rename a tag
  recategorize  ID CATEGORY                        change a tag's category
  merge         -scope S -into TARGET SOURCE...    merge tags into TARGET
  autoformat    -scope S [-format F]               title-case every tag name
  analyze       -scope S                           ask the classifier for merge groups
  apply         -scope S [-file F]                 apply merge groups (JSON, "-" for stdin)
  similar       -scope S [-limit N] NAME           find look-alike tag names
  delete        ID                                 delete a tag and its links
  tag-content   -scope S -content ID [-category C] -primary a,b [-secondary c,d]
  dedupe-lists  -primary a,b [-secondary c,d]      merge two name lists

Global flags:
  -db, -env, -env-file, -log-level, -classifier, -model, -chunk-size,
  -concurrency, -classifier-rps, -classifier-burst, -classifier-timeout,
  -cache-path, -cache-ttl
`

// command runs one subcommand against the tag service.
type command func(ctx context.Context, a *app, args []string) error

//nolint:gochecknoglobals // Static dispatch table
var commands = map[string]command{
	"list":         runList,
	"create":       runCreate,
	"rename":       runRename,
	"recategorize": runRecategorize,
	"merge":        runMerge,
	"autoformat":   runAutoFormat,
	"analyze":      runAnalyze,
	"apply":        runApply,
	"similar":      runSimilar,
	"delete":       runDelete,
	"tag-content":  runTagContent,
	"dedupe-lists": runDedupeLists,
}

// app carries what every subcommand needs.
type app struct {
	svc    *service.TagService
	stdin  io.Reader
	stdout io.Writer
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, rest, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(stderr, "tagadmin: %v\n\n%s", err, usage)
		return 2
	}
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	name, cmdArgs := rest[0], rest[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "tagadmin: unknown command %q\n\n%s", name, usage)
		return 2
	}

	a := &app{stdin: stdin, stdout: stdout}

	// dedupe-lists is pure and needs no store.
	if name != "dedupe-lists" {
		injector := di.NewContainer(cfg)
		defer func() {
			if report := injector.Shutdown(); report != nil && !report.Succeed {
				fmt.Fprintf(stderr, "tagadmin: shutdown: %v\n", report)
			}
		}()

		a.svc, err = di.TagService(injector)
		if err != nil {
			fmt.Fprintf(stderr, "tagadmin: %v\n", err)
			return 1
		}

		log := do.MustInvoke[*logger.Logger](injector)
		log.Debug("running command", "command", name, "db_path", cfg.Store.Path)
	}

	if err := cmd(ctx, a, cmdArgs); err != nil {
		return reportError(stderr, err)
	}
	return 0
}

// reportError writes err as JSON to stderr. Coded errors keep their code and
// details; usage errors exit with 2.
func reportError(stderr io.Writer, err error) int {
	var ue usageError
	if domainerrors.As(err, &ue) {
		fmt.Fprintf(stderr, "tagadmin: %v\n", err)
		return 2
	}

	out := struct {
		Code    domainerrors.Code `json:"code"`
		Message string            `json:"message"`
		Details any               `json:"details,omitempty"`
	}{Code: domainerrors.CodeOf(err), Message: err.Error()}

	var de *domainerrors.Error
	if domainerrors.As(err, &de) {
		out.Details = de.Details
	}

	enc := json.NewEncoder(stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	return 1
}

type usageError string

func (e usageError) Error() string { return string(e) }

func usagef(format string, args ...any) error {
	return usageError(fmt.Sprintf(format, args...))
}

// newFlags returns a FlagSet for a subcommand that reports errors instead of exiting.
func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%s: %v", fs.Name(), err)
	}
	return nil
}

func requireScope(fs *flag.FlagSet, scope string) error {
	if strings.TrimSpace(scope) == "" {
		return usagef("%s: -scope is required", fs.Name())
	}
	return nil
}

// splitList parses a comma separated flag value. Blank entries are kept so
// the dedupe rules decide what to drop.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
