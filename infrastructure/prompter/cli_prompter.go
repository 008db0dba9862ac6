package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CliPrompter asks for form fields that were not given on the command line,
// typically portal passwords.
type CliPrompter struct {
	in  *bufio.Reader
	raw io.Reader
	out io.Writer
}

// NewCliPrompter creates a new CliPrompter reading answers from in and
// writing prompts to out.
func NewCliPrompter(in io.Reader, out io.Writer) *CliPrompter {
	return &CliPrompter{in: bufio.NewReader(in), raw: in, out: out}
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	if f, ok := p.raw.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PromptForField reads one line as the value of name. io.EOF is returned when
// the input ends before a line is available.
func (p *CliPrompter) PromptForField(name string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "%s: ", name)

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptForFields fills every name missing from data, in order.
func (p *CliPrompter) PromptForFields(names []string, data map[string]string) error {
	var missing []string
	for _, name := range names {
		if _, ok := data[name]; ok {
			continue
		}
		value, err := p.PromptForField(name)
		if errors.Is(err, io.EOF) {
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return err
		}
		data[name] = value
	}
	if len(missing) > 0 {
		return p.FormatNonInteractiveError(missing)
	}
	return nil
}

// FormatNonInteractiveError creates a helpful error.
func (p *CliPrompter) FormatNonInteractiveError(missing []string) error {
	return fmt.Errorf("missing form fields %s: pass them with --data or on stdin", strings.Join(missing, ", "))
}
