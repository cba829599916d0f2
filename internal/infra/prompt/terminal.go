// Package prompt implements operator interaction over a line-oriented terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

const maxAttempts = 3

// Terminal reads answers from in and writes prompts to out. It must be the only reader of in.
type Terminal struct {
	in   *bufio.Reader
	out  io.Writer
	warn lipgloss.Style
	ask  lipgloss.Style
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		in:   bufio.NewReader(in),
		out:  out,
		warn: r.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		ask:  r.NewStyle().Bold(true),
	}
}

var _ ports.Confirmer = (*Terminal)(nil)

// Confirm approves only the literal token "y"; surrounding blanks are part of the answer.
// End of input counts as an empty answer.
func (t *Terminal) Confirm(prompt string) (domain.Confirmation, error) {
	fmt.Fprint(t.out, t.warn.Render(prompt))
	answer, err := t.readLine()
	if err != nil {
		return domain.Confirmation{}, err
	}
	fmt.Fprintln(t.out)
	return domain.Confirmation{
		Answer:   answer,
		Approved: answer == domain.ConfirmationToken,
	}, nil
}

// Choose asks until the answer is one of choices, up to a few attempts.
func (t *Terminal) Choose(prompt string, choices ...string) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		fmt.Fprint(t.out, t.ask.Render(prompt))
		answer, err := t.readLine()
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		fmt.Fprintln(t.out)
		for _, c := range choices {
			if strings.EqualFold(answer, c) {
				return c, nil
			}
		}
		if answer == "" && t.exhausted() {
			break
		}
		fmt.Fprintf(t.out, "Error: %q is not one of %s.\n", answer, strings.Join(choices, ", "))
	}
	return "", &domain.OpError{
		Op:   "prompt.choose",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%w: expected one of %s", domain.ErrInvalidConfig, strings.Join(choices, ", ")),
	}
}

// readLine returns the next line without its line ending.
func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", &domain.OpError{Op: "prompt.read", Kind: domain.KindExecution, Err: err}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) exhausted() bool {
	_, err := t.in.Peek(1)
	return err != nil
}
