// Package worldometers parses the alphabetical country listings published
// on worldometers.info.
package worldometers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"covidtracker/lib/htmlutil"
	"covidtracker/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const DefaultBaseUrl = "https://www.worldometers.info/geography/alphabetical-list-of-countries/"

var ErrNoTable = errors.New("country table not found")

// ListingURL returns the page listing every country starting with letter.
func ListingURL(baseUrl string, letter rune) (string, error) {
	if !unicode.IsLetter(letter) || letter > unicode.MaxASCII {
		return "", fmt.Errorf("not a letter: %q", letter)
	}
	if !strings.HasSuffix(baseUrl, "/") {
		baseUrl += "/"
	}
	return fmt.Sprintf("%scountries-that-start-with-%c/", baseUrl, unicode.ToLower(letter)), nil
}

type ListedCountry struct {
	Rank       int
	Name       string
	Population int64
}

// String renders the country as "rank name population".
func (c ListedCountry) String() string {
	return fmt.Sprintf("%d %s %d", c.Rank, c.Name, c.Population)
}

// ParseListing reads the rows of the first .table-responsive table.
// Rows that do not have a rank, a name and a population are skipped.
func ParseListing(page string) ([]ListedCountry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	table := doc.Find(".table-responsive").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var countries []ListedCountry
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := htmlutil.Cells(row)
		if len(cells) < 3 {
			return
		}
		rank, err := strconv.Atoi(cells[0])
		if err != nil {
			return
		}
		population, err := textutil.ParseCount(cells[2])
		if err != nil {
			return
		}
		countries = append(countries, ListedCountry{
			Rank:       rank,
			Name:       cells[1],
			Population: population,
		})
	})

	return countries, nil
}
