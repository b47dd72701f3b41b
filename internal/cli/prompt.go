package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/klauern/razd/internal/sync"
	"github.com/klauern/razd/internal/ui"
	"github.com/klauern/razd/internal/ui/tui"
)

// maxPreviewLines limits the conflict diff printed by the line prompter.
const maxPreviewLines = 10

// Prompter answers the sync manager's questions on a terminal. Yes/no
// questions are read as lines. Conflicts use picker when it is set and a
// numbered menu otherwise.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
	picker func(*sync.ConflictPreview) (sync.Resolution, error)
}

var _ sync.ConfirmationPort = (*Prompter)(nil)

// NewPrompter creates a prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// newTerminalPrompter prompts on stdin and stdout, switching conflicts to
// the interactive picker when both are terminals.
func newTerminalPrompter() *Prompter {
	p := NewPrompter(os.Stdin, os.Stdout)
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		p.picker = func(preview *sync.ConflictPreview) (sync.Resolution, error) {
			return tui.RunConflictPicker(preview)
		}
	}
	return p
}

// Confirm asks a [Y/n] question. An empty answer means yes. End of input
// means no.
func (p *Prompter) Confirm(ctx context.Context, q sync.Question) (bool, error) {
	fmt.Fprintf(p.out, "%s %s [Y/n]: ", ui.Warning(ui.SymbolWarning), q.Prompt())

	answer, err := p.readLine(ctx)
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ResolveConflict shows the tool diff and asks which file wins.
func (p *Prompter) ResolveConflict(ctx context.Context, preview *sync.ConflictPreview) (sync.Resolution, error) {
	if p.picker != nil {
		return p.picker(preview)
	}

	fmt.Fprintf(p.out, "%s Both %s and %s changed since the last sync.\n",
		ui.Warning(ui.SymbolWarning), preview.RazdfilePath, preview.MisePath)
	p.showPreview(preview)

	fmt.Fprintln(p.out, "\nOptions:")
	fmt.Fprintln(p.out, "  1) Use Razdfile.yml (overwrite mise.toml)")
	fmt.Fprintln(p.out, "  2) Use mise.toml (update Razdfile.yml)")
	fmt.Fprintln(p.out, "  3) Skip sync (resolve manually)")
	fmt.Fprint(p.out, "\nYour choice [1-3]: ")

	answer, err := p.readLine(ctx)
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return sync.ResolveSkip, nil
	}
	if err != nil {
		return sync.ResolveSkip, err
	}

	switch answer {
	case "1":
		return sync.ResolveUseRazdfile, nil
	case "2":
		return sync.ResolveUseMise, nil
	default:
		return sync.ResolveSkip, nil
	}
}

func (p *Prompter) showPreview(preview *sync.ConflictPreview) {
	if !preview.ToolsDiffer() {
		fmt.Fprintln(p.out, ui.Dim("Tool sections are identical; other content differs."))
		return
	}
	fmt.Fprintf(p.out, "Tool changes: %s\n", preview.DiffSummary())
	fmt.Fprintln(p.out, strings.Repeat("-", 50))
	for _, line := range preview.Lines(maxPreviewLines) {
		fmt.Fprintln(p.out, ui.DiffLine(line))
	}
	fmt.Fprintln(p.out, strings.Repeat("-", 50))
}

// readLine reads one trimmed line. A final line without a newline is
// returned without error.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
