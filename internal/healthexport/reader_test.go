package healthexport

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fyrsmithlabs/stepwrap/internal/logging"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []Record {
	t.Helper()
	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func doc(records ...string) string {
	return "<HealthData>\n" + strings.Join(records, "\n") + "\n</HealthData>"
}

func stepRecord(start, end, value string) string {
	return `<Record type="HKQuantityTypeIdentifierStepCount" startDate="` + start +
		`" endDate="` + end + `" value="` + value + `"/>`
}

func TestReader_Fixture(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r, err := Open(filepath.Join("testdata", "export.xml"), WithMetrics(m))
	require.NoError(t, err)
	defer r.Close()

	recs := readAll(t, r)
	require.Len(t, recs, 4)

	pst := time.FixedZone("", -8*3600)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, pst).Unix(), recs[0].Start.Unix())
	assert.Equal(t, 7000, recs[0].Value)
	assert.Equal(t, 5000, recs[1].Value, "fractional values truncate")
	assert.Equal(t, 5000, recs[2].Value)
	assert.Equal(t, 11000, recs[3].Value)

	// Start keeps the written offset, so the calendar date stays Jan 8.
	_, offset := recs[3].Start.Zone()
	assert.Equal(t, -8*3600, offset)
	assert.Equal(t, 8, recs[3].Start.Day())

	assert.Equal(t, Stats{Scanned: 9, Matched: 4, Skipped: 4}, r.Stats())

	assert.Equal(t, 9.0, testutil.ToFloat64(m.scanned))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.matched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues(reasonMissingAttribute)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues(reasonBadTimestamp)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skipped.WithLabelValues(reasonBadValue)))
	assert.Greater(t, testutil.ToFloat64(m.bytes), 0.0)
}

func TestReader_MalformedValueIgnored(t *testing.T) {
	input := doc(
		stepRecord("2024-01-01 08:00:00 +0000", "2024-01-01 08:10:00 +0000", "abc"),
		stepRecord("2024-01-01 09:00:00 +0000", "2024-01-01 09:10:00 +0000", "100"),
	)
	recs := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, recs, 1)
	assert.Equal(t, 100, recs[0].Value)
}

func TestReader_FiltersByType(t *testing.T) {
	input := doc(
		`<Record type="HKQuantityTypeIdentifierDistanceWalkingRunning" startDate="2024-01-01 08:00:00 +0000" endDate="2024-01-01 08:10:00 +0000" value="1.2"/>`,
		stepRecord("2024-01-01 09:00:00 +0000", "2024-01-01 09:10:00 +0000", "250"),
	)

	recs := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, recs, 1)
	assert.Equal(t, 250, recs[0].Value)

	r := NewReader(strings.NewReader(input), WithStepType("HKQuantityTypeIdentifierDistanceWalkingRunning"))
	recs = readAll(t, r)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Value)
}

func TestReader_SkipsNestedChildren(t *testing.T) {
	input := doc(
		`<Record type="HKQuantityTypeIdentifierStepCount" startDate="2024-01-01 08:00:00 +0000" endDate="2024-01-01 08:10:00 +0000" value="10">
  <MetadataEntry key="a" value="b"/>
  <HeartRateVariabilityMetadataList><InstantaneousBeatsPerMinute bpm="60" time="1"/></HeartRateVariabilityMetadataList>
</Record>`,
		`<Correlation type="HKCorrelationTypeFood">`+stepRecord("2024-01-01 10:00:00 +0000", "2024-01-01 10:10:00 +0000", "20")+`</Correlation>`,
	)
	recs := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, recs, 2)
	assert.Equal(t, 10, recs[0].Value)
	assert.Equal(t, 20, recs[1].Value)
}

func TestReader_DocumentErrors(t *testing.T) {
	rec := stepRecord("2024-01-01 08:00:00 +0000", "2024-01-01 08:10:00 +0000", "100")

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "  \n "},
		{"truncated element", `<HealthData><Record type="HKQuantityTypeIdentifierStepCount" startDate="x"`},
		{"truncated inside record", `<HealthData><Record type="HKQuantityTypeIdentifierStepCount" startDate="2024-01-01 08:00:00 +0000" endDate="2024-01-01 08:00:00 +0000" value="1"><MetadataEntry/>`},
		{"mismatched tags", `<HealthData><Record></HealthData>`},
		{"second root element", doc(rec) + rec},
		{"text after root", doc(rec) + "garbage"},
		{"text before root", "garbage" + doc(rec)},
		{"record as root then another", rec + rec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input))
			var err error
			for err == nil {
				_, err = r.Next()
			}
			require.ErrorIs(t, err, ErrMalformedDocument)

			// The failure is sticky.
			_, again := r.Next()
			assert.Equal(t, err, again)
		})
	}
}

func TestReader_TrailingMarkupAfterRoot(t *testing.T) {
	input := "\ufeff" + doc(stepRecord("2024-01-01 08:00:00 +0000", "2024-01-01 08:10:00 +0000", "100")) +
		"\n<!-- exported -->\n<?done?>\n"

	recs := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, recs, 1)
	assert.Equal(t, 100, recs[0].Value)
}

func TestReader_ExtraContentIsNotAggregated(t *testing.T) {
	input := doc(stepRecord("2024-01-01 08:00:00 +0000", "2024-01-01 08:10:00 +0000", "100")) +
		stepRecord("2024-01-01 09:00:00 +0000", "2024-01-01 09:10:00 +0000", "100")

	r := NewReader(strings.NewReader(input))
	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 100, rec.Value)

	_, err = r.Next()
	require.ErrorIs(t, err, ErrMalformedDocument)
	assert.Contains(t, err.Error(), "content after root element")
	assert.Equal(t, 1, r.Stats().Matched)
}

func TestReader_DeclaredCharset(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<HealthData locale=\"fr_FR\">" +
		`<Record type="HKQuantityTypeIdentifierStepCount" sourceName="Montre de Andr` + "\xe9" + `" ` +
		`startDate="2024-01-01 08:00:00 +0000" endDate="2024-01-01 08:10:00 +0000" value="42"/>` +
		"</HealthData>"

	recs := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, recs, 1)
	assert.Equal(t, 42, recs[0].Value)
}

func TestReader_EndBeforeStartSkipped(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	input := doc(
		stepRecord("2024-01-01 09:00:00 +0000", "2024-01-01 08:00:00 +0000", "100"),
		stepRecord("2024-01-01 09:00:00 +0000", "2024-01-01 09:00:00 +0000", "7"),
	)

	r := NewReader(strings.NewReader(input), WithMetrics(m))
	recs := readAll(t, r)
	require.Len(t, recs, 1, "zero-length intervals are kept")
	assert.Equal(t, 7, recs[0].Value)
	assert.Equal(t, Stats{Scanned: 2, Matched: 1, Skipped: 1}, r.Stats())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues(reasonBadInterval)))
}

func TestReader_EOFIsRepeatable(t *testing.T) {
	r := NewReader(strings.NewReader(doc()))
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_TraceLogsSkips(t *testing.T) {
	tl := logging.NewTestLogger()
	input := doc(stepRecord("2024-01-01 08:00:00 +0000", "2024-01-01 08:10:00 +0000", "NaN"))

	recs := readAll(t, NewReader(strings.NewReader(input), WithLogger(tl.Logger)))
	assert.Empty(t, recs)
	tl.AssertLogged(t, logging.TraceLevel, "skipping step record")
	tl.AssertField(t, "skipping step record", "reason", reasonBadValue)
}

func TestReader_CloseIdempotent(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "export.xml"))
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_Gzip(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "export.xml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err = gw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	path := filepath.Join(t.TempDir(), "export.xml.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Len(t, readAll(t, r), 4)
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestOpen_Zip(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "export.xml"))
	require.NoError(t, err)

	path := writeZip(t, map[string]string{
		"apple_health_export/export_cda.xml": "<ClinicalDocument/>",
		"apple_health_export/export.xml":     string(raw),
	})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Len(t, readAll(t, r), 4)
}

func TestOpen_ZipWithoutExport(t *testing.T) {
	path := writeZip(t, map[string]string{"readme.txt": "hi"})

	_, err := Open(path)
	require.ErrorIs(t, err, ErrUnsupportedArchive)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-01-01 09:00:00 -0800", time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC), false},
		{"2024-01-01T09:00:00Z", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), false},
		{"2024-01-01 09:00:00", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), false},
		{"not a date", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1234", 1234, true},
		{"12.99", 12, true},
		{" 7 ", 7, true},
		{"0", 0, true},
		{"1e3", 1000, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
		{"1e30", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
