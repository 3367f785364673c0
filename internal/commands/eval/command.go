// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package eval implements the "yamllogic eval" command: load a rule
// document, evaluate it against a variable environment, and report the
// verdict through the exit code.
package eval

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/yamllogic/internal/log"
	"github.com/tombee/yamllogic/pkg/errors"
	"github.com/tombee/yamllogic/pkg/logic"
)

// ExitError carries a specific process exit code out of command
// execution. Verdicts map to exit codes: 0 true, 1 false, 2 error.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// NewCommand creates the eval command.
func NewCommand() *cobra.Command {
	var (
		varFlags []string
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "eval <rules-file>",
		Short: "Evaluate a YAML rule against a variable environment",
		Long: `Eval loads a YAML rule document and evaluates it to a single true/false
verdict. The document is either a bare rule sequence:

  - $user
  - root

or a mapping with a rule and an inline variable environment:

  rule:
    - $host
    - like: "^prod-"
  vars:
    host: prod-web-03

Variables given with --var override document variables. The verdict is
printed to stdout and reflected in the exit code: 0 for true, 1 for
false, 2 for any error.`,
		Example: `  # Example 1: Rule and vars in one document
  yamllogic eval rule.yaml

  # Example 2: Supply variables on the command line
  yamllogic eval rule.yaml --var user=root --var host=prod-web-03

  # Example 3: Re-evaluate whenever the file changes
  yamllogic eval rule.yaml --watch --var user=root`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args[0], varFlags, watch)
		},
	}

	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "Variable assignment name=value (repeatable)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-evaluate whenever the rules file changes")

	return cmd
}

func runEval(cmd *cobra.Command, path string, varFlags []string, watch bool) error {
	overrides, err := parseVarFlags(varFlags)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	if !watch {
		verdict, err := evaluateFile(path, overrides, slog.Default())
		if err != nil {
			return &ExitError{Code: 2, Message: err.Error()}
		}
		fmt.Fprintln(cmd.OutOrStdout(), verdict)
		if !verdict {
			return &ExitError{Code: 1}
		}
		return nil
	}

	return watchAndEvaluate(cmd, path, overrides, slog.Default())
}

// evaluateFile loads a rule document and evaluates it.
func evaluateFile(path string, overrides logic.Vars, logger *slog.Logger) (bool, error) {
	rule, vars, err := loadDocument(path)
	if err != nil {
		return false, err
	}

	for name, value := range overrides {
		vars[name] = value
	}

	evaluator := logic.New(logic.WithLogger(log.WithComponent(logger, "logic")))
	return evaluator.Evaluate(rule, vars)
}

// loadDocument reads a rule file holding either a bare rule sequence or
// a mapping with "rule" and optional "vars" keys.
func loadDocument(path string) (logic.Rule, logic.Vars, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading rules file %s", path)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, nil, &errors.ConfigError{Reason: "invalid YAML", Cause: err}
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil, nil, &errors.ConfigError{Reason: fmt.Sprintf("empty rule document %s", path)}
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var rule logic.Rule
		if err := root.Decode(&rule); err != nil {
			return nil, nil, errors.Wrap(err, "decoding rule document")
		}
		return rule, logic.Vars{}, nil
	}

	var doc struct {
		Rule logic.Rule        `yaml:"rule"`
		Vars map[string]string `yaml:"vars"`
	}
	if err := root.Decode(&doc); err != nil {
		return nil, nil, errors.Wrap(err, "decoding rule document")
	}
	if doc.Vars == nil {
		doc.Vars = map[string]string{}
	}
	return doc.Rule, doc.Vars, nil
}

// parseVarFlags converts --var name=value assignments into an environment.
func parseVarFlags(flags []string) (logic.Vars, error) {
	vars := make(logic.Vars, len(flags))
	for _, flag := range flags {
		name, value, ok := strings.Cut(flag, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", flag)
		}
		vars[name] = value
	}
	return vars, nil
}

// watchAndEvaluate evaluates once, then re-evaluates on every change to
// the rules file until the command context is cancelled. Evaluation
// errors are logged, not fatal, so the file can be fixed in place.
func watchAndEvaluate(cmd *cobra.Command, path string, overrides logic.Vars, logger *slog.Logger) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("creating file watcher: %v", err)}
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors often replace
	// the file on save, which drops a direct watch.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("watching %s: %v", filepath.Dir(absPath), err)}
	}

	report := func() {
		verdict, err := evaluateFile(absPath, overrides, logger)
		if err != nil {
			logger.Error("rule evaluation failed", slog.Any("error", err), slog.String("file", path))
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), verdict)
	}
	report()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("rules file changed", slog.String("file", path))
			report()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("file watcher error", slog.Any("error", err))
		}
	}
}
