package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCells(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tbody>
			<tr><td> 1 </td><td>
				United   <b>States</b>
			</td><td>331,002,651</td></tr>
		</tbody></table>`))
	require.NoError(t, err)

	cells := Cells(doc.Find("tr").First())
	require.Equal(t, []string{"1", "United States", "331,002,651"}, cells)
}

func TestGetTextNil(t *testing.T) {
	require.Equal(t, "", GetText(nil))
}
