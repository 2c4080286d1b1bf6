// Package prompt asks for search criteria on an interactive terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/quake-feed-search/internal/query"
)

// ErrInvalidChoice is returned when the menu answer is not one of the listed modes.
var ErrInvalidChoice = errors.New("invalid menu choice")

// Mode is one entry of the search menu.
type Mode struct {
	Key   string
	Label string
	ask   func(p *Prompter, params *query.Params) error
}

// Modes lists the search menu in display order.
var Modes = []Mode{
	{Key: "1", Label: "Date range", ask: askDateRange},
	{Key: "2", Label: "Time range", ask: askTimeRange},
	{Key: "3", Label: "Date and time range", ask: func(p *Prompter, params *query.Params) error {
		if err := askDateRange(p, params); err != nil {
			return err
		}
		return askTimeRange(p, params)
	}},
	{Key: "4", Label: "Date", ask: func(p *Prompter, params *query.Params) error {
		return p.ask("Enter the date (YYYY, YYYY-MM, or YYYY-MM-DD): ", &params.Date)
	}},
	{Key: "5", Label: "Time of day", ask: func(p *Prompter, params *query.Params) error {
		return p.ask("Enter the time (HH, HH-MM, or HH:MM): ", &params.Time)
	}},
	{Key: "6", Label: "Combined date and time", ask: func(p *Prompter, params *query.Params) error {
		return p.ask("Enter the combined date and time (YYYY-MM-DD-HH-MM): ", &params.DateTime)
	}},
	{Key: "7", Label: "Magnitude", ask: func(p *Prompter, params *query.Params) error {
		return p.ask("Enter the magnitude size or range (e.g., 1.5, >2, <=3.0): ", &params.Magnitude)
	}},
	{Key: "8", Label: "Magnitude bucket", ask: func(p *Prompter, params *query.Params) error {
		return p.ask("Enter the magnitude bucket (e.g., >=1, <3, 2): ", &params.Bucket)
	}},
	{Key: "9", Label: "Place", ask: func(p *Prompter, params *query.Params) error {
		return p.ask("Enter the place to search for (e.g., CA, Alaska): ", &params.Place)
	}},
}

// Prompter reads answers line by line from in and writes questions to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Params shows the menu, reads the chosen mode and its criteria, and returns
// them unvalidated. query.Build decides whether they form a valid query.
func (p *Prompter) Params() (query.Params, error) {
	fmt.Fprintln(p.out, "Choose search type:")
	for _, m := range Modes {
		fmt.Fprintf(p.out, "%s. Search by %s\n", m.Key, m.Label)
	}

	var choice string
	if err := p.ask(fmt.Sprintf("Enter choice (1-%d): ", len(Modes)), &choice); err != nil {
		return query.Params{}, err
	}

	for _, m := range Modes {
		if m.Key == choice {
			var params query.Params
			if err := m.ask(p, &params); err != nil {
				return query.Params{}, err
			}
			return params, nil
		}
	}
	return query.Params{}, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
}

func askDateRange(p *Prompter, params *query.Params) error {
	if err := p.ask("Enter start date (YYYY, YYYY-MM, or YYYY-MM-DD; blank for none): ", &params.DateFrom); err != nil {
		return err
	}
	return p.ask("Enter end date (YYYY, YYYY-MM, or YYYY-MM-DD; blank for none): ", &params.DateTo)
}

func askTimeRange(p *Prompter, params *query.Params) error {
	if err := p.ask("Enter start time (HH, HH:MM, or HH:MM:SS; blank for none): ", &params.TimeFrom); err != nil {
		return err
	}
	return p.ask("Enter end time (HH, HH:MM, or HH:MM:SS; blank for none): ", &params.TimeTo)
}

// ask prints question and stores the trimmed answer in dst. A final line
// without a trailing newline is accepted; end of input before any answer is
// io.ErrUnexpectedEOF.
func (p *Prompter) ask(question string, dst *string) error {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("read answer: %w", err)
		}
		if line == "" {
			return fmt.Errorf("read answer: %w", io.ErrUnexpectedEOF)
		}
	}
	*dst = strings.TrimSpace(line)
	return nil
}
