package incident

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthtracker/internal/domain"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title       string
		description string
		want        domain.IncidentCategory
	}{
		{"Minister accused of bribery in housing scheme", "", domain.CategoryCorruption},
		{"Farmers stage protest at state capital", "", domain.CategoryProtest},
		{"Clash breaks out after rally", "violence reported", domain.CategoryProtest},
		{"Mob attack leaves three injured", "", domain.CategoryViolence},
		{"High court delivers judgment", "", domain.CategoryLegalCase},
		{"Housing scheme implementation stalls", "", domain.CategoryPolicyFailure},
		{"Minister resigns abruptly", "", domain.CategoryOther},
	}

	for _, tc := range cases {
		got := Categorize(tc.title, tc.description)
		assert.Equal(t, tc.want, got, "title %q", tc.title)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	t.Parallel()

	title := "Corruption scandal sparks protest outside court"
	first := Categorize(title, "")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Categorize(title, ""))
	}
	// "corruption" outranks "protest" and "court" in bucket order.
	assert.Equal(t, domain.CategoryCorruption, first)
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	got := NormalizeDate("Mon, 02 Jan 2006 15:04:05 +0000")
	assert.Equal(t, "2006-01-02T15:04:05Z", got)

	got = NormalizeDate("2024-03-15")
	assert.Equal(t, "2024-03-15T00:00:00Z", got)
}

func TestNormalizeDateFallback(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC()
	got, err := time.Parse(time.RFC3339, NormalizeDate("not a date"))
	require.NoError(t, err)
	assert.False(t, got.Before(before.Truncate(time.Second)))
}

func TestParseFeed(t *testing.T) {
	t.Parallel()

	xml := `<rss><channel>
	<item>
	  <title><![CDATA[Minister accused of bribery in housing scheme]]></title>
	  <description><![CDATA[An <b>inquiry</b> has been ordered.]]></description>
	  <link>https://example.org/story/1</link>
	  <pubDate>Mon, 02 Jan 2006 15:04:05 +0000</pubDate>
	</item>
	<item>
	  <title>Local bakery wins pastry award</title>
	  <description>Nothing newsworthy here.</description>
	  <link>https://example.org/story/2</link>
	</item>
	</channel></rss>`

	records := ParseFeed(xml, "Test Feed", 0)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Minister accused of bribery in housing scheme", rec.Title)
	assert.Equal(t, "An inquiry has been ordered.", rec.Description)
	assert.Equal(t, "https://example.org/story/1", rec.Link)
	assert.Equal(t, "Test Feed", rec.SourceName)
}

func TestParseFeedCapsPerSource(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < DefaultPerSourceCap+10; i++ {
		fmt.Fprintf(&sb, "<item><title>Minister controversy number %d</title><description>allegation</description></item>", i)
	}

	records := ParseFeed(sb.String(), "Bulk Feed", 0)
	assert.Len(t, records, DefaultPerSourceCap)
}

func TestParseFeedHonorsConfiguredCap(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "<item><title>Minister controversy number %d</title><description>allegation</description></item>", i)
	}

	records := ParseFeed(sb.String(), "Bulk Feed", 3)
	require.Len(t, records, 3)
	assert.Equal(t, "Minister controversy number 0", records[0].Title)
}

func TestParseAPI(t *testing.T) {
	t.Parallel()

	body := []byte(`[
	  {"title": "Court orders investigation into scam", "summary": "A fraud inquiry begins", "url": "https://example.org/a"},
	  {"title": "Recipe of the week", "summary": "Lentil soup"}
	]`)

	records, err := ParseAPI(body, "Test API", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Court orders investigation into scam", records[0].Title)
	assert.Equal(t, "https://example.org/a", records[0].Link)
}

func TestParseAPIHonorsConfiguredCap(t *testing.T) {
	t.Parallel()

	var items []string
	for i := 0; i < 5; i++ {
		items = append(items, fmt.Sprintf(`{"title": "Scheme delay report %d", "summary": "implementation stalled"}`, i))
	}
	body := []byte("[" + strings.Join(items, ",") + "]")

	records, err := ParseAPI(body, "Bulk API", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseAPIRejectsNonArray(t *testing.T) {
	t.Parallel()

	_, err := ParseAPI([]byte(`{"title": "not an array"}`), "Test API", 0)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	raw := domain.RawIncidentRecord{
		Title:         "Minister accused of bribery in housing scheme",
		Description:   "An inquiry has been ordered",
		Link:          "https://example.org/story/1",
		PublishedDate: "Mon, 02 Jan 2006 15:04:05 +0000",
		SourceName:    "Test Feed",
	}

	inc := Normalize(raw)
	assert.NotEmpty(t, inc.ID)
	assert.Equal(t, domain.CategoryCorruption, inc.Category)
	assert.Equal(t, "2006-01-02T15:04:05Z", inc.Date)
	assert.False(t, inc.Verified)
	assert.Equal(t, "Test Feed", inc.Source)
	assert.Equal(t, "https://example.org/story/1", inc.SourceURL)
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	got := CleanText("<p>Minister   announces&nbsp;new   scheme</p>")
	assert.Equal(t, "Minister announces new scheme", got)
}
