package calendar

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected WeekdaySet
	}{
		{name: "daily", input: "Daily", expected: All},
		{name: "daily upper case", input: "DAILY", expected: All},
		{name: "quoted daily", input: `"daily"`, expected: All},
		{name: "empty", input: "", expected: None},
		{name: "blank", input: "   ", expected: None},
		{name: "single day", input: "Mon", expected: Of(time.Monday)},
		{name: "list", input: "Mon,Wed,Fri", expected: Of(time.Monday, time.Wednesday, time.Friday)},
		{name: "list with spaces", input: " mon , wed ,fri ", expected: Of(time.Monday, time.Wednesday, time.Friday)},
		{name: "long names", input: "Tuesday,Thursday", expected: Of(time.Tuesday, time.Thursday)},
		{name: "aliases", input: "tues,weds,thurs", expected: Of(time.Tuesday, time.Wednesday, time.Thursday)},
		{name: "range", input: "Fri-Sun", expected: Of(time.Friday, time.Saturday, time.Sunday)},
		{name: "wrapping range", input: "Sat-Mon", expected: Of(time.Saturday, time.Sunday, time.Monday)},
		{name: "range en dash", input: "Mon – Fri", expected: Of(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)},
		{name: "range em dash", input: "Sat—Sun", expected: Of(time.Saturday, time.Sunday)},
		{name: "full week range", input: "Mon-Sun", expected: All},
		{name: "single day range", input: "Wed-Wed", expected: Of(time.Wednesday)},
		{name: "mixed", input: "Mon,Thu-Fri", expected: Of(time.Monday, time.Thursday, time.Friday)},
		{name: "single quoted mixed", input: "'Sun, Tue-Wed'", expected: Of(time.Sunday, time.Tuesday, time.Wednesday)},
		{name: "trailing comma", input: "Mon,", expected: Of(time.Monday)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser().Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got, "got %s", got)
		})
	}
}

func TestParseRejectsUnknownTokens(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"Mon,Funday", ErrUnknownDay},
		{"weekdays", ErrUnknownDay},
		{"mo", ErrUnknownDay},
		{"Mon Wed", ErrUnknownDay},
		{"Mon-", ErrMalformedRange},
		{"-Fri", ErrMalformedRange},
		{"Mon-Wed-Fri", ErrMalformedRange},
		{"Mon-Blursday", ErrUnknownDay},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewParser().Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, None, got)
		})
	}
}

func TestParseIsIdempotentAndCaseInsensitive(t *testing.T) {
	p := NewParser()

	upper, err := p.Parse("DAILY")
	require.NoError(t, err)
	lower, err := p.Parse("daily")
	require.NoError(t, err)

	assert.Equal(t, All, upper)
	assert.Equal(t, upper, lower)
	assert.Len(t, upper.Days(), 7)
}

func TestParserMemoizesByNormalizedText(t *testing.T) {
	p := NewParser()

	first, err := p.Parse("Fri-Sun")
	require.NoError(t, err)
	require.EqualValues(t, 1, p.Derivations())

	for _, equivalent := range []string{"fri-sun", " FRI - SUN ", `"Fri–Sun"`} {
		got, err := p.Parse(equivalent)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
	assert.EqualValues(t, 1, p.Derivations(), "equivalent text must be served from the cache")

	_, err = p.Parse("Mon,Blursday")
	require.Error(t, err)
	_, err = p.Parse("mon,blursday")
	require.ErrorIs(t, err, ErrUnknownDay)
	assert.EqualValues(t, 2, p.Derivations(), "failed parses are cached too")
}

func TestParserConcurrentLookups(t *testing.T) {
	p := NewParser()
	inputs := []string{"Daily", "Mon,Wed,Fri", "Fri-Sun", "Sat-Mon", "Mon,Thu-Fri"}

	want := make(map[string]WeekdaySet)
	for _, in := range inputs {
		set, err := NewParser().Parse(in)
		require.NoError(t, err)
		want[in] = set
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := inputs[i%len(inputs)]
			got, err := p.Parse(in)
			assert.NoError(t, err)
			assert.Equal(t, want[in], got)
		}(i)
	}
	wg.Wait()
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "mon,thu-fri", Normalize(`  "Mon , Thu – Fri"  `))
	assert.Equal(t, "daily", Normalize("'Daily'"))
	assert.Equal(t, `"mon`, Normalize(`"Mon`))
}
