package countries

import (
	"context"
	"errors"
	"testing"

	"covidtracker/lib/scrapers/countrycode"
	"covidtracker/lib/scrapers/worldometers"

	"github.com/stretchr/testify/require"
)

type pages struct {
	byUrl   map[string]string
	fetched []string
}

func (p *pages) FetchText(_ context.Context, url string) (string, error) {
	p.fetched = append(p.fetched, url)
	page, ok := p.byUrl[url]
	if !ok {
		return "", errors.New("404 " + url)
	}
	return page, nil
}

const uListing = `<div class="table-responsive"><table><tbody>
<tr><td>1</td><td>United States</td><td>331,002,651</td></tr>
<tr><td>2</td><td>United Kingdom</td><td>67,886,011</td></tr>
<tr><td>3</td><td>Uganda</td><td>45,741,007</td></tr>
</tbody></table></div>`

const codesPage = `<table class="table main-table"><tbody>
<tr><td>United Kingdom</td><td>44</td><td>GB / GBR</td></tr>
<tr><td>United States</td><td>1</td><td>US / USA</td></tr>
</tbody></table>`

func newDirectory() (Directory, *pages) {
	uUrl, _ := worldometers.ListingURL(worldometers.DefaultBaseUrl, 'u')
	p := &pages{byUrl: map[string]string{}}
	p.byUrl[uUrl] = uListing
	p.byUrl[countrycode.DefaultUrl] = codesPage
	return NewDirectory(p, Options{}), p
}

func TestListByLetter(t *testing.T) {
	d, p := newDirectory()
	listed, err := d.ListByLetter(context.Background(), 'U')
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, "3 Uganda 45741007", listed[2].String())
	require.Len(t, p.fetched, 1)

	_, err = d.ListByLetter(context.Background(), 'q')
	require.Error(t, err)
}

func TestPopulationAndCode(t *testing.T) {
	d, _ := newDirectory()
	ctx := context.Background()

	population, err := d.Population(ctx, "united kingdom")
	require.NoError(t, err)
	require.Equal(t, int64(67886011), population)

	code, err := d.Code(ctx, "United Kingdom")
	require.NoError(t, err)
	require.Equal(t, "GB", code)

	_, err = d.Population(ctx, "Utopia")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = d.Code(ctx, "Utopia")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = d.Population(ctx, "")
	require.ErrorIs(t, err, ErrNotFound)
}
