package seeder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const defaultLang = "en"

// LocalizedName is one language/name pair
type LocalizedName struct {
	Lang string
	Name string
}

// Record is one country of the capitals dataset with names in output order
type Record struct {
	Code    string
	Lat     float64
	Lon     float64
	Names   []LocalizedName
	Capital []LocalizedName
}

// Build joins countries with their capitals and translations.
// Countries whose capital is missing from cities1000 are dropped.
func Build(countries []Country, capitals map[string]Capital, names Names) []Record {
	records := make([]Record, 0, len(countries))
	for _, c := range countries {
		capital, ok := capitals[c.Code]
		if !ok {
			continue
		}
		records = append(records, Record{
			Code:    c.Code,
			Lat:     capital.Lat,
			Lon:     capital.Lon,
			Names:   ordered(c.Name, names[c.GeonameID]),
			Capital: ordered(capital.Name, names[capital.GeonameID]),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Code < records[j].Code })
	return records
}

// ordered puts the English default first, then the other languages alphabetically
func ordered(english string, localized map[string]string) []LocalizedName {
	out := []LocalizedName{{Lang: defaultLang, Name: english}}
	langs := make([]string, 0, len(localized))
	for lang := range localized {
		if lang != defaultLang {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	for _, lang := range langs {
		out = append(out, LocalizedName{Lang: lang, Name: localized[lang]})
	}
	return out
}

// Write renders records as a JSON object keyed by country code, one country per line.
// Key order is significant to the capital matcher so the document is written by hand.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("{\n"); err != nil {
		return err
	}
	for i, r := range records {
		code, err := json.Marshal(r.Code)
		if err != nil {
			return err
		}
		names, err := writeNames(r.Names)
		if err != nil {
			return fmt.Errorf("country %s: %w", r.Code, err)
		}
		capital, err := writeNames(r.Capital)
		if err != nil {
			return fmt.Errorf("capital of %s: %w", r.Code, err)
		}
		fmt.Fprintf(bw, `  %s: {"lat": %s, "lon": %s, "names": %s, "capital": %s}`,
			code, formatCoord(r.Lat), formatCoord(r.Lon), names, capital)
		if i < len(records)-1 {
			bw.WriteByte(',')
		}
		bw.WriteByte('\n')
	}
	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes records to path, replacing it atomically
func WriteFile(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".capitals-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeNames(names []LocalizedName) (string, error) {
	buf := []byte{'{'}
	for i, n := range names {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		lang, err := json.Marshal(n.Lang)
		if err != nil {
			return "", err
		}
		name, err := json.Marshal(n.Name)
		if err != nil {
			return "", err
		}
		buf = append(buf, lang...)
		buf = append(buf, ": "...)
		buf = append(buf, name...)
	}
	buf = append(buf, '}')
	return string(buf), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
