// Package console is the interactive menu front end: pick Search or List,
// pick a column, and read the jobs back as a table.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/valyala/fasttemplate"

	"techjobs/internal/engine"
	"techjobs/internal/models"
)

const allColumns = "All"

type Options struct {
	// SortField orders every printed job list.
	SortField string
	// RowTemplate prints one line per job with {column} placeholders. An
	// empty template prints a table instead.
	RowTemplate string
}

type Console struct {
	store     *engine.Store
	in        *bufio.Scanner
	out       io.Writer
	sortField string
	tmpl      *fasttemplate.Template
}

func New(store *engine.Store, in io.Reader, out io.Writer, opts Options) (*Console, error) {
	c := &Console{
		store:     store,
		in:        bufio.NewScanner(in),
		out:       out,
		sortField: opts.SortField,
	}
	if c.sortField == "" {
		c.sortField = engine.DefaultSortField
	}
	if opts.RowTemplate != "" {
		t, err := fasttemplate.NewTemplate(opts.RowTemplate, "{", "}")
		if err != nil {
			return nil, fmt.Errorf("invalid row template: %w", err)
		}
		c.tmpl = t
	}
	return c, nil
}

// Run loops over the main menu until the user quits or input ends.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Welcome to TechJobs!")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		action, ok := c.choose("View jobs by (type 'x' to quit):", []string{"Search", "List"})
		if !ok {
			fmt.Fprintln(c.out, "Goodbye.")
			return c.in.Err()
		}

		var err error
		if action == "List" {
			err = c.list(ctx)
		} else {
			err = c.search(ctx)
		}
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
	}
}

func (c *Console) list(ctx context.Context) error {
	column, ok, err := c.chooseColumn(ctx, "List")
	if err != nil || !ok {
		return err
	}
	if column == allColumns {
		rows, err := c.store.All(ctx)
		if err != nil {
			return err
		}
		return c.printJobs(rows)
	}

	values, err := c.store.DistinctValues(ctx, column)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n*** All %s Values ***\n", column)
	for _, v := range engine.SortStrings(values) {
		fmt.Fprintln(c.out, v)
	}
	return nil
}

func (c *Console) search(ctx context.Context) error {
	column, ok, err := c.chooseColumn(ctx, "Search by:")
	if err != nil || !ok {
		return err
	}
	fmt.Fprint(c.out, "\nSearch term: ")
	term, ok := c.readLine()
	if !ok {
		return nil
	}

	var rows []models.Row
	if column == allColumns {
		rows, err = c.store.SearchAll(ctx, term)
	} else {
		rows, err = c.store.SearchColumn(ctx, column, term)
	}
	if err != nil {
		return err
	}
	return c.printJobs(rows)
}

// chooseColumn offers the sorted columns followed by All.
func (c *Console) chooseColumn(ctx context.Context, header string) (string, bool, error) {
	cols, err := c.store.Columns(ctx)
	if err != nil {
		return "", false, err
	}
	choice, ok := c.choose(header, append(engine.SortStrings(cols), allColumns))
	return choice, ok, nil
}

// choose prints a numbered menu and reads a choice until it is valid. It
// returns false on 'x' or end of input.
func (c *Console) choose(header string, choices []string) (string, bool) {
	for {
		fmt.Fprintf(c.out, "\n%s\n", header)
		for i, choice := range choices {
			fmt.Fprintf(c.out, "%d - %s\n", i, choice)
		}
		line, ok := c.readLine()
		if !ok || strings.EqualFold(line, "x") {
			return "", false
		}
		i, err := strconv.Atoi(line)
		if err == nil && i >= 0 && i < len(choices) {
			return choices[i], true
		}
		fmt.Fprintln(c.out, "Invalid choice. Try again.")
	}
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) printJobs(rows []models.Row) error {
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No Results")
		return nil
	}
	rows, err := engine.SortRowsByField(rows, c.sortField)
	if err != nil {
		return err
	}

	if c.tmpl != nil {
		for _, row := range rows {
			line := c.tmpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
				v, _ := row.GetString(tag)
				return w.Write([]byte(v))
			})
			fmt.Fprintln(c.out, line)
		}
		return nil
	}

	columns := rows[0].Keys()
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, col := range columns {
			v, _ := row.GetString(col)
			cells = append(cells, v)
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}
