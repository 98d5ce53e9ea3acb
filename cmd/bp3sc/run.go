package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/grammar"
	"github.com/Conceptual-Machines/bp3-agents-go/agents/resources"
	"github.com/Conceptual-Machines/bp3-agents-go/agents/translator"
	"github.com/Conceptual-Machines/bp3-agents-go/config"
	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
)

// options are the parsed command line flags
type options struct {
	output      string
	startSymbol string
	listRules   bool
	verbose     bool
	seed        int64
	hasSeed     bool
	alphabetDir string
	settings    string
	scaleTable  string
	maxDur      float64
	jobs        int
	inputs      []string
}

// job is one input file and what became of it
type job struct {
	input  string
	code   string
	report string
	err    error
}

func parseFlags(cfg *config.Config, args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("bp3sc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: bp3sc [flags] <grammar-file>...")
		fmt.Fprintln(stderr, "Translate Bol Processor BP3 grammars to SuperCollider pattern code.")
		fs.PrintDefaults()
	}

	var seed string
	fs.StringVar(&opts.output, "o", "", "output .scd file, or a directory when several inputs are given (default: stdout)")
	fs.StringVar(&opts.startSymbol, "start-symbol", cfg.StartSymbol, "symbol whose definition is played")
	fs.BoolVar(&opts.listRules, "list-rules", false, "list the parsed rules and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "print every diagnostic instead of a summary")
	fs.StringVar(&seed, "seed", "", "seed for reproducible random choices")
	fs.StringVar(&opts.alphabetDir, "alphabet-dir", cfg.AlphabetDir, "directory with -al.*, -ho.* and -se.* files")
	fs.StringVar(&opts.settings, "settings", "", "settings file, overriding the one named in the grammar")
	fs.StringVar(&opts.scaleTable, "scale-table", cfg.ScaleTablePath, "HCL scale and tuning overlay")
	fs.Float64Var(&opts.maxDur, "max-dur", cfg.MaxDur, "bound playback to this many beats (0 for none)")
	fs.IntVar(&opts.jobs, "jobs", 4, "number of grammars translated at once")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q", seed)
		}
		opts.seed = n
		opts.hasSeed = true
	}
	if opts.jobs < 1 {
		opts.jobs = 1
	}
	opts.inputs = fs.Args()
	if len(opts.inputs) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("no grammar file given")
	}
	return opts, nil
}

// run executes the command and returns the process exit code
func run(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(cfg, args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.listRules {
		return listRules(opts, stdout, stderr)
	}

	agentCfg := *cfg
	agentCfg.StartSymbol = opts.startSymbol
	agentCfg.MaxDur = opts.maxDur
	agent := translator.NewAgent(&agentCfg)

	jobs := make([]*job, len(opts.inputs))
	swg := sizedwaitgroup.New(opts.jobs)
	for i, input := range opts.inputs {
		jobs[i] = &job{input: input}
		swg.Add()
		go func(j *job) {
			defer swg.Done()
			translateFile(agent, opts, j)
		}(jobs[i])
	}
	swg.Wait()

	exit := 0
	for _, j := range jobs {
		if j.err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", j.input, j.err)
			exit = 1
			continue
		}
		if j.report != "" {
			fmt.Fprintf(stderr, "%s: %s\n", filepath.Base(j.input), j.report)
		}
		if err := writeOutput(opts, j, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", j.input, err)
			exit = 1
		}
	}
	return exit
}

func translateFile(agent *translator.Agent, opts *options, j *job) {
	doc, err := grammar.ParseFile(j.input)
	if err != nil {
		j.err = err
		return
	}

	bundle, err := resources.Load(doc, resources.Options{
		Dir:            opts.alphabetDir,
		SettingsPath:   opts.settings,
		ScaleTablePath: opts.scaleTable,
	})
	if err != nil {
		j.err = err
		return
	}

	topts := translator.Options{SourceName: filepath.Base(j.input)}
	if opts.hasSeed {
		seed := opts.seed
		topts.Seed = &seed
	}

	result, err := agent.Translate(context.Background(), doc, translator.Resources{
		Alphabet: bundle.Alphabet,
		Settings: bundle.Settings,
		Scales:   bundle.Scales,
	}, topts)
	if err != nil {
		j.err = err
		return
	}

	j.code = result.Code
	switch {
	case opts.verbose:
		j.report = result.Diagnostics.Report()
	case len(result.Diagnostics) > 0:
		j.report = result.Diagnostics.Summary()
	}
}

// writeOutput sends code to stdout, to the -o file, or into the -o directory
// when there are several inputs
func writeOutput(opts *options, j *job, stdout, stderr io.Writer) error {
	if opts.output == "" {
		_, err := io.WriteString(stdout, j.code)
		return err
	}

	path := opts.output
	if len(opts.inputs) > 1 {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path = filepath.Join(opts.output, outputName(j.input))
	}
	if err := os.WriteFile(path, []byte(j.code), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(stderr, "Written: %s (%s)\n", path, humanize.Bytes(uint64(len(j.code))))
	log.Printf("💾 Wrote %s", path)
	return nil
}

// outputName turns -gr.ruwet into ruwet.scd
func outputName(input string) string {
	base := filepath.Base(input)
	base = strings.TrimPrefix(base, "-gr.")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "grammar"
	}
	return base + ".scd"
}

func listRules(opts *options, stdout, stderr io.Writer) int {
	exit := 0
	for _, input := range opts.inputs {
		doc, err := grammar.ParseFile(input)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", input, err)
			exit = 1
			continue
		}
		if len(opts.inputs) > 1 {
			fmt.Fprintf(stdout, "# %s\n", filepath.Base(input))
		}
		if err := translator.ListRules(doc, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			exit = 1
		}
	}
	return exit
}
