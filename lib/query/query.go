// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

// Package query asks the user short questions on the terminal:
// free-form answers, constrained choices, yes/no, and hidden password
// input.
package query

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoAnswer is returned when the user exhausts the attempt limit
// without giving an acceptable answer, or input ends early.
var ErrNoAnswer = errors.New("no acceptable answer")

// Query is one question. The zero value plus a Question is usable:
// free-form answer, three attempts, stdin/stderr.
type Query struct {
	// Question is the prompt text, without trailing punctuation.
	Question string

	// Choices constrains the answer to these values (compared
	// case-insensitively). Empty means any non-empty answer is
	// accepted.
	Choices []string

	// Default is returned for an empty answer. The empty string means
	// an empty answer is not accepted.
	Default string

	// Trials is the attempt limit; 0 means 3.
	Trials int

	// In and Out default to os.Stdin and os.Stderr. The prompt goes to
	// Out so piped stdout stays clean.
	In  io.Reader
	Out io.Writer
}

// Ask prompts until an acceptable answer arrives or the attempt limit
// is hit.
func (q Query) Ask() (string, error) {
	in := q.In
	if in == nil {
		in = os.Stdin
	}
	out := q.Out
	if out == nil {
		out = os.Stderr
	}
	trials := q.Trials
	if trials <= 0 {
		trials = 3
	}
	reader := bufio.NewReader(in)
	for i := 0; i < trials; i++ {
		fmt.Fprint(out, q.prompt())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("%w: %v", ErrNoAnswer, err)
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			if q.Default != "" {
				return q.Default, nil
			}
			continue
		}
		if len(q.Choices) == 0 {
			return answer, nil
		}
		for _, choice := range q.Choices {
			if strings.EqualFold(answer, choice) {
				return choice, nil
			}
		}
	}
	return "", ErrNoAnswer
}

// prompt renders "Question (a/b/c): " with the default choice
// capitalized.
func (q Query) prompt() string {
	if len(q.Choices) == 0 {
		return q.Question + ": "
	}
	rendered := make([]string, len(q.Choices))
	for i, choice := range q.Choices {
		if choice == q.Default {
			choice = strings.ToUpper(choice)
		}
		rendered[i] = choice
	}
	return fmt.Sprintf("%s (%s): ", q.Question, strings.Join(rendered, "/"))
}

// YesNo asks a yes/no question and returns the answer as a boolean.
func YesNo(question string, defaultYes bool) (bool, error) {
	def := "n"
	if defaultYes {
		def = "y"
	}
	answer, err := (Query{
		Question: question,
		Choices:  []string{"y", "n"},
		Default:  def,
	}).Ask()
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}

// Password prompts for a password with echo disabled when stdin is a
// terminal, falling back to a plain line read otherwise (pipes, CI).
func Password(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(secret), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
