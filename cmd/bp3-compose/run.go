package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/composer"
	"github.com/Conceptual-Machines/bp3-agents-go/agents/resources"
	"github.com/Conceptual-Machines/bp3-agents-go/agents/translator"
	"github.com/Conceptual-Machines/bp3-agents-go/config"
	"github.com/Conceptual-Machines/bp3-agents-go/llm"
	"github.com/dustin/go-humanize"
)

// run executes the command and returns the process exit code. A nil provider is
// chosen from the configuration.
func run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer, provider llm.Provider) int {
	fs := flag.NewFlagSet("bp3-compose", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: bp3-compose [flags] <request>...")
		fmt.Fprintln(stderr, "Write a BP3 grammar from a description and translate it to SuperCollider.")
		fs.PrintDefaults()
	}

	agentCfg := *cfg
	var (
		output      string
		grammarOut  string
		seed        int64
		maxDur      float64
		scaleTable  string
		showGrammar bool
	)
	fs.StringVar(&agentCfg.ComposerModel, "model", cfg.ComposerModel, "model used to write the grammar")
	fs.StringVar(&agentCfg.ComposerProvider, "provider", cfg.ComposerProvider, "openai or gemini (default: inferred from the model)")
	fs.StringVar(&output, "o", "", "output .scd file (default: stdout)")
	fs.StringVar(&grammarOut, "grammar-out", "", "also save the BP3 grammar to this file")
	fs.BoolVar(&showGrammar, "show-grammar", false, "print the BP3 grammar to stderr")
	fs.Int64Var(&seed, "seed", -1, "seed for reproducible random choices (-1 for none)")
	fs.Float64Var(&maxDur, "max-dur", cfg.MaxDur, "bound playback to this many beats (0 for none)")
	fs.StringVar(&scaleTable, "scale-table", cfg.ScaleTablePath, "HCL scale and tuning overlay")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	request := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if request == "" {
		fs.Usage()
		fmt.Fprintln(stderr, "Error: no request given")
		return 2
	}
	agentCfg.MaxDur = maxDur

	var (
		agent *composer.Agent
		err   error
	)
	if provider != nil {
		agent, err = composer.NewAgentWithProvider(&agentCfg, provider)
	} else {
		agent, err = composer.NewAgent(ctx, &agentCfg)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	bundle, err := resources.Load(nil, resources.Options{ScaleTablePath: scaleTable})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	opts := translator.Options{}
	if seed >= 0 {
		opts.Seed = &seed
	}
	result, err := agent.Compose(ctx, request, translator.Resources{Scales: bundle.Scales}, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if showGrammar {
		fmt.Fprintf(stderr, "%s\n", result.Grammar)
	}
	if grammarOut != "" {
		if err := os.WriteFile(grammarOut, []byte(result.Grammar), 0o644); err != nil {
			fmt.Fprintf(stderr, "Error: failed to write grammar: %v\n", err)
			return 1
		}
	}
	if d := result.Translation.Diagnostics; len(d) > 0 {
		fmt.Fprintln(stderr, d.Summary())
	}

	code := result.Translation.Code
	if output == "" {
		if _, err := io.WriteString(stdout, code); err != nil {
			return 1
		}
		return 0
	}
	if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write output: %v\n", err)
		return 1
	}
	fmt.Fprintf(stderr, "Written: %s (%s, %d tokens)\n", output, humanize.Bytes(uint64(len(code))), result.Usage.TotalTokens)
	return 0
}
