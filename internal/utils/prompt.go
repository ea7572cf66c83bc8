package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hostinit/hostinit/internal"
	"go.uber.org/zap"
)

// Prompter asks the operator a yes/no question on the terminal.
type Prompter interface {
	Confirm(question string, defaultYes bool) bool
}

type DefaultPrompter struct {
	logger *zap.Logger
	config internal.Config
	in     io.Reader
	out    io.Writer
}

func NewPrompter(logger *zap.Logger, config internal.Config) *DefaultPrompter {
	return &DefaultPrompter{
		logger: logger,
		config: config,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

func (p *DefaultPrompter) Confirm(question string, defaultYes bool) bool {
	if p.config.Yes {
		p.logger.Debug("auto-confirming", zap.String("question", question))
		return true
	}

	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s: ", question, hint)

	scanner := bufio.NewScanner(p.in)
	if !scanner.Scan() {
		return defaultYes
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	if answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}
