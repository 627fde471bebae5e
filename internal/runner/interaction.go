package runner

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/bashhack/dirlock/internal/common"
)

// Interactor defines an interface for interacting with the user
type Interactor interface {
	// PromptYesNo asks the user a yes/no question and returns their response
	PromptYesNo(question string) bool
}

// DefaultInteractor is the standard implementation of Interactor
// that reads answers from Reader
type DefaultInteractor struct {
	Reader io.Reader
	Logger common.Logger
}

// NewDefaultInteractor creates a new DefaultInteractor reading from stdin
func NewDefaultInteractor(logger common.Logger) *DefaultInteractor {
	return &DefaultInteractor{
		Reader: os.Stdin,
		Logger: logger,
	}
}

// PromptYesNo asks the user a yes/no question and returns their response
func (i *DefaultInteractor) PromptYesNo(question string) bool {
	i.Logger.StatusMessage("%s (y/n): ", question)

	reader := bufio.NewReader(i.Reader)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		// On error, default to 'no'
		return false
	}

	answer = strings.TrimSpace(answer)
	return strings.HasPrefix(strings.ToLower(answer), "y")
}

// NonInteractiveInteractor always returns default values without prompting
type NonInteractiveInteractor struct{}

// NewNonInteractiveInteractor creates a new NonInteractiveInteractor
func NewNonInteractiveInteractor() *NonInteractiveInteractor {
	return &NonInteractiveInteractor{}
}

// PromptYesNo always returns false without prompting
func (i *NonInteractiveInteractor) PromptYesNo(string) bool {
	return false
}

// NewInteractor returns a prompting interactor when stdin is a terminal and
// a non-interactive one otherwise, so scripts never block on a question.
func NewInteractor(logger common.Logger) Interactor {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return NewDefaultInteractor(logger)
	}
	return NewNonInteractiveInteractor()
}
