// Package countrycode parses the country code table published on
// countrycode.org.
package countrycode

import (
	"errors"
	"strings"

	"covidtracker/lib/htmlutil"
	"covidtracker/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
)

const DefaultUrl = "https://countrycode.org/"

var (
	ErrNoTable  = errors.New("country code table not found")
	ErrNotFound = errors.New("no matching country code")
)

// minSimilarity is the Jaro-Winkler score below which a fuzzy match is
// rejected.
const minSimilarity = 0.9

type CodeRow struct {
	Name string
	// Code is the ISO 3166-1 alpha-2 code.
	Code string
}

// ParseCodes reads the rows of the main country table. The third column
// holds "alpha2 / alpha3", only the first two letters are kept.
func ParseCodes(page string) ([]CodeRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.main-table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var rows []CodeRow
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := htmlutil.Cells(row)
		if len(cells) < 3 || len(cells[2]) < 2 || cells[0] == "" {
			return
		}
		rows = append(rows, CodeRow{
			Name: cells[0],
			Code: strings.ToUpper(cells[2][:2]),
		})
	})
	return rows, nil
}

// Match finds the code of a country name, trying in order:
//  1. a name equal to the requested one, ignoring case and whitespace
//  2. the longest table name contained in the requested name
//  3. the most similar table name by Jaro-Winkler distance
func Match(rows []CodeRow, name string) (CodeRow, error) {
	wanted := textutil.NormalizeName(name)
	if wanted == "" {
		return CodeRow{}, ErrNotFound
	}

	for _, row := range rows {
		if textutil.NormalizeName(row.Name) == wanted {
			return row, nil
		}
	}

	var contained CodeRow
	for _, row := range rows {
		normalized := textutil.NormalizeName(row.Name)
		if normalized == "" || !strings.Contains(wanted, normalized) {
			continue
		}
		if len(normalized) > len(textutil.NormalizeName(contained.Name)) {
			contained = row
		}
	}
	if contained.Code != "" {
		return contained, nil
	}

	var best CodeRow
	var bestScore float64
	for _, row := range rows {
		score := matchr.JaroWinkler(wanted, textutil.NormalizeName(row.Name), false)
		if score > bestScore {
			bestScore = score
			best = row
		}
	}
	if bestScore >= minSimilarity {
		return best, nil
	}
	return CodeRow{}, ErrNotFound
}
