// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Command miniscript is the reference host for the MiniScript interpreter:
// run a script file to completion, or start an interactive REPL when no
// file is given.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/naoina/toml"
	"github.com/peterh/liner"
	"github.com/probeum/miniscript/host"
	"gopkg.in/urfave/cli.v1"
)

const version = "0.1.0"

// tomlSettings keeps TOML keys matching Go struct field names exactly, the
// same convention the host harness's config loader uses.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field %q is not defined in %s", field, rt.String())
	},
}

// runnerConfig is the optional TOML file a user points -config at: today
// just the step budget, matching §4.7's DefaultStepLimit knob, left open
// for future host-level settings (output formatting, stdlib toggles).
type runnerConfig struct {
	StepLimit int `toml:",omitempty"`
}

func loadConfig(path string, cfg *runnerConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	return err
}

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	stepLimitFlag = cli.IntFlag{
		Name:  "steps",
		Usage: "Step budget per RunUntilDone call (0 = host default)",
	}
	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored REPL output",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "miniscript"
	app.Usage = "run or interactively explore a MiniScript program"
	app.Version = version
	app.Flags = []cli.Flag{configFlag, stepLimitFlag, noColorFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Error("miniscript: fatal error", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := runnerConfig{StepLimit: c.Int("steps")}
	if path := c.String("config"); path != "" {
		if err := loadConfig(path, &cfg); err != nil {
			return err
		}
	}

	if c.NArg() > 0 {
		return runFile(c.Args().First(), cfg)
	}
	return runREPL(cfg, !c.Bool("no-color"))
}

func runFile(path string, cfg runnerConfig) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	it := host.NewInterpreter(splitLines(string(source)))
	if err := it.Compile(); err != nil {
		return err
	}
	if it.NeedMoreInput() {
		return fmt.Errorf("%s: unexpected end of input (unterminated block)", path)
	}
	return it.RunUntilDone(cfg.StepLimit, false)
}

func runREPL(cfg runnerConfig, useColor bool) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	out := colorable.NewColorableStdout()
	prompt := color.New(color.FgCyan).SprintFunc()
	errColor := color.New(color.FgRed).SprintFunc()
	if !useColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		prompt = func(a ...interface{}) string { return fmt.Sprint(a...) }
		errColor = prompt
	}

	it := host.NewInterpreter(nil)
	pendingPrompt := "> "
	for {
		text, err := line.Prompt(prompt(pendingPrompt))
		if err == liner.ErrPromptAborted || errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		line.AppendHistory(text)

		result, err := it.REPL(text)
		if err != nil {
			fmt.Fprintln(out, errColor(err.Error()))
			pendingPrompt = "> "
			continue
		}
		if it.NeedMoreInput() {
			pendingPrompt = "... "
			continue
		}
		pendingPrompt = "> "
		if result != "" {
			fmt.Fprintln(out, result)
		}
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
