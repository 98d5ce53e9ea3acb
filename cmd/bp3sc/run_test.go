package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Conceptual-Machines/bp3-agents-go/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tala = `// Teental
-se.tala
RND
gram#1[1] S --> dha dhin dhin dha
gram#1[2] S --> dha tin tin ta
`

func writeGrammar(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func testConfig() *config.Config {
	return &config.Config{StartSymbol: "S"}
}

func TestRun_Stdout(t *testing.T) {
	dir := t.TempDir()
	input := writeGrammar(t, dir, "-gr.tala", tala)

	var stdout, stderr bytes.Buffer
	code := run(testConfig(), []string{"--seed", "7", "--max-dur", "16", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "// Source: -gr.tala")
	assert.Contains(t, out, "Pseed(7, ")
	assert.Contains(t, out, `Pfindur(16, Pdef(\S)).play;`)
}

func TestRun_OutputFile(t *testing.T) {
	dir := t.TempDir()
	input := writeGrammar(t, dir, "-gr.tala", tala)
	output := filepath.Join(dir, "tala.scd")

	var stdout, stderr bytes.Buffer
	code := run(testConfig(), []string{"-o", output, input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Written: "+output)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `Pdef(\S).play;`)
}

func TestRun_SeveralInputs(t *testing.T) {
	dir := t.TempDir()
	first := writeGrammar(t, dir, "-gr.one", "ORD\ngram#1[1] S --> do4 re4\n")
	second := writeGrammar(t, dir, "-gr.two", "ORD\ngram#1[1] S --> mi4 fa4\n")
	outDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := run(testConfig(), []string{"--jobs", "2", "-o", outDir, first, second}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	for _, name := range []string{"one.scd", "two.scd"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_StartSymbol(t *testing.T) {
	dir := t.TempDir()
	input := writeGrammar(t, dir, "-gr.theka", "ORD\ngram#1[1] Theka --> dha ge na\n")

	var stdout, stderr bytes.Buffer
	code := run(testConfig(), []string{"--start-symbol", "Theka", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), `Pdef(\Theka).play;`)
}

func TestRun_ListRules(t *testing.T) {
	dir := t.TempDir()
	input := writeGrammar(t, dir, "-gr.tala", tala)

	var stdout, stderr bytes.Buffer
	code := run(testConfig(), []string{"--list-rules", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Subgrammar 1 - Mode: RND")
	assert.Contains(t, out, "Rules: 2")
	assert.Contains(t, out, "gram#1[2] S --> dha tin tin ta")
	assert.NotContains(t, out, "Pdef")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := writeGrammar(t, dir, "-gr.empty", "// nothing here\n")
	good := writeGrammar(t, dir, "-gr.good", "ORD\ngram#1[1] S --> do4\n")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "no input", args: nil, wantCode: 2, wantErr: "no grammar file given"},
		{name: "bad seed", args: []string{"--seed", "x", good}, wantCode: 2, wantErr: `invalid seed "x"`},
		{name: "unknown flag", args: []string{"--nope", good}, wantCode: 2, wantErr: "flag provided but not defined"},
		{name: "missing file", args: []string{filepath.Join(dir, "missing")}, wantCode: 1, wantErr: "failed to read grammar file"},
		{name: "no blocks", args: []string{empty}, wantCode: 1, wantErr: "no grammar blocks found"},
		{name: "one bad input of two", args: []string{good, empty}, wantCode: 1, wantErr: "-gr.empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(testConfig(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr.String(), tt.wantErr)
		})
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "/tmp/-gr.ruwet", want: "ruwet.scd"},
		{input: "song.bp", want: "song.scd"},
		{input: "-gr.", want: "grammar.scd"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, outputName(tt.input))
		})
	}
}
