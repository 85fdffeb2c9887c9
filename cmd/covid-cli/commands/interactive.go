package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"covidtracker/cmd/covid-cli/globals"
	"covidtracker/cmd/covid-cli/utils"
	"covidtracker/lib/chart"
	"covidtracker/lib/scrapers/worldometers"

	"github.com/spf13/cobra"
)

var (
	errExit = errors.New("exit")
	errBack = errors.New("back")
)

// parseChoice reads a 1-based menu index out of input.
func parseChoice(input string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", strings.TrimSpace(input))
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("choose a number between 1 and %d", count)
	}
	return n - 1, nil
}

// command recognizes the navigation words accepted at every prompt.
func command(input string) error {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", "q":
		return errExit
	case "back", "b":
		return errBack
	}
	return nil
}

type session struct {
	ctx   context.Context
	in    *bufio.Scanner
	out   io.Writer
	value *globals.Value
}

func (s session) ask(format string, args ...any) (string, error) {
	utils.Prompt(s.out, format, args...)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errExit
	}
	line := strings.TrimSpace(s.in.Text())
	if err := command(line); err != nil {
		return "", err
	}
	return line, nil
}

func (s session) pickCountry() (worldometers.ListedCountry, error) {
	for {
		input, err := s.ask("Enter the first letter of a country (or 'exit'): ")
		if errors.Is(err, errBack) {
			continue
		}
		if err != nil {
			return worldometers.ListedCountry{}, err
		}
		letter, err := parseLetter(input)
		if err != nil {
			utils.Error(s.out, "%s", err)
			continue
		}
		listed, err := s.value.Directory.ListByLetter(s.ctx, letter)
		if err != nil {
			utils.Error(s.out, "%s", err)
			continue
		}
		if len(listed) == 0 {
			utils.Error(s.out, "no countries start with %q", string(letter))
			continue
		}
		renderListing(s.out, listed)

		for {
			input, err := s.ask("Choose a country by number (or 'back'): ")
			if errors.Is(err, errBack) {
				break
			}
			if err != nil {
				return worldometers.ListedCountry{}, err
			}
			i, err := parseChoice(input, len(listed))
			if err != nil {
				utils.Error(s.out, "%s", err)
				continue
			}
			return listed[i], nil
		}
	}
}

func (s session) chartLoop(name string) error {
	for {
		for i, m := range chart.Metrics {
			fmt.Fprintf(s.out, "%d. %s\n", i+1, m.Label())
		}
		input, err := s.ask("Choose a chart by number (or 'back'): ")
		if err != nil {
			return err
		}
		i, err := parseChoice(input, len(chart.Metrics))
		if err != nil {
			utils.Error(s.out, "%s", err)
			continue
		}
		err = writeChart(s.ctx, s.out, s.value, name, chart.Metrics[i], s.value.ChartPath)
		if err != nil {
			utils.Error(s.out, "%s", err)
		}
	}
}

func (s session) run() error {
	for {
		country, err := s.pickCountry()
		if errors.Is(err, errExit) {
			return nil
		}
		if err != nil {
			return err
		}

		status, err := latestStatus(s.ctx, s.value, country.Name)
		if err != nil {
			utils.Error(s.out, "%s", err)
			continue
		}
		renderStatus(s.out, country.Name, status)

		err = s.chartLoop(country.Name)
		if errors.Is(err, errExit) {
			return nil
		}
		if err != nil && !errors.Is(err, errBack) {
			return err
		}
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	s := session{
		ctx:   cmd.Context(),
		in:    bufio.NewScanner(cmd.InOrStdin()),
		out:   cmd.OutOrStdout(),
		value: globals.Get(cmd.Context()),
	}
	return s.run()
}
