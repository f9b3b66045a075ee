// Command ushell is a small interactive POSIX-ish shell: line editing with
// history and completion, pipelines, redirections, background jobs, and a
// simple if/then/else conditional, plus a bundled toolset, a local package
// manager, and an optional MCP control-plane server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"ushell/internal/apt"
	"ushell/internal/builtins"
	"ushell/internal/completion"
	"ushell/internal/config"
	"ushell/internal/dispatch"
	"ushell/internal/environment"
	"ushell/internal/executor"
	"ushell/internal/expand"
	"ushell/internal/glob"
	"ushell/internal/history"
	"ushell/internal/jobs"
	"ushell/internal/mcp"
	"ushell/internal/parser"
	"ushell/internal/shlog"
	"ushell/internal/signals"
	"ushell/internal/term"
	"ushell/internal/tools"
)

func main() {
	mcpFlag := flag.Bool("mcp", false, "start the MCP control-plane server")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: ushell [-mcp]")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ushell: %s\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := shlog.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ushell: %s\n", err)
		os.Exit(2)
	}
	defer closeLog()

	env := environment.New(cfg.EnvMax)
	hist := history.New(cfg.HistSize)
	if err := hist.Load(cfg.HistFile); err != nil && !os.IsNotExist(err) {
		logger.Warn("history load failed", "error", err)
	}
	jt := jobs.New()
	sig := signals.New()
	sig.Start()
	defer sig.Stop()

	reg := dispatch.NewRegistry()
	tools.Register(reg)

	ex := executor.New(reg, env, jt, sig)

	exitState := &builtins.ExitState{}
	builtins.Register(reg, &builtins.Deps{
		Env: env, History: hist, Jobs: jt, Resumer: ex, Exit: exitState,
	})

	aptRepo, err := apt.Open(cfg.AptHome)
	if err != nil {
		logger.Warn("apt init failed", "error", err)
	} else {
		defer aptRepo.Close()
		reg.RegisterBuiltin("apt", aptRepo.Builtin())
	}

	if *mcpFlag {
		srv := mcp.New(fmt.Sprintf("127.0.0.1:%d", cfg.MCPPort), cfg.MCPMaxClients, reg, logger)
		go func() {
			if err := srv.Serve(); err != nil {
				logger.Error("mcp server stopped", "error", err)
			}
		}()
		defer srv.Close()
	}

	globber := func(pattern string) ([]string, error) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		return glob.Expand(wd, pattern)
	}

	comp := completion.New(reg.Names)
	ed := term.New(os.Stdin, os.Stdout, hist, comp.Complete)

	for {
		if sig.ChildExited() {
			jt.Update()
			jt.Cleanup()
		}

		line, ok := ed.ReadLine(prompt(env))
		if !ok {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		hist.Add(line)

		expanded := expand.Line(line, env.Get)
		node, err := parser.Parse(expanded, globber)
		if err != nil {
			// Parser errors already carry the "ushell: parse error" prefix.
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		reparse := func(sub string) (parser.Node, error) {
			return parser.Parse(expand.Line(sub, env.Get), globber)
		}
		ex.LastStatus = ex.RunNode(node, expanded, reparse)

		if status, requested := exitState.Requested(); requested {
			hist.Save(cfg.HistFile)
			os.Exit(status)
		}
	}

	hist.Save(cfg.HistFile)
}

func prompt(env *environment.Store) string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "?"
	}
	if home, ok := env.Get("HOME"); ok && home != "" && strings.HasPrefix(wd, home) {
		wd = "~" + strings.TrimPrefix(wd, home)
	}
	user, _ := env.Get("USER")
	if user == "" {
		user = "ushell"
	}
	return fmt.Sprintf("%s:%s> ", user, wd)
}
