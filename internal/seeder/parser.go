package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexivanou/geoweather-api/internal/config"
)

// capital feature code in the GeoNames dump
const featureCapital = "PPLC"

// technical pseudo-languages of alternateNames.txt
var technicalLangs = map[string]bool{
	"link": true, "post": true, "iata": true, "icao": true,
	"faac": true, "fr_1793": true, "abbr": true, "wkdt": true,
}

// Country is one row of countryInfo.txt
type Country struct {
	Code        string
	Name        string
	CapitalName string
	GeonameID   int
}

// Capital is a PPLC row of cities1000.txt
type Capital struct {
	GeonameID   int
	CountryCode string
	Name        string
	Lat         float64
	Lon         float64
}

// Names maps a geonameid to its localized names keyed by language
type Names map[int]map[string]string

// Parser parses GeoNames data files
type Parser struct {
	dataDir          string
	allowedLanguages map[string]bool
}

// NewParser creates a new parser instance with config
func NewParser(seederCfg config.SeederConfig) *Parser {
	allowedLangs := make(map[string]bool)
	for _, lang := range seederCfg.AllowedLanguages {
		allowedLangs[strings.ToLower(lang)] = true
	}

	return &Parser{
		dataDir:          seederCfg.DataDir,
		allowedLanguages: allowedLangs,
	}
}

// ParseCountries parses countryInfo.txt. Countries without a capital are skipped.
func (p *Parser) ParseCountries() ([]Country, error) {
	rc, err := p.open("countryInfo")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return parseCountriesFromReader(rc)
}

func parseCountriesFromReader(reader io.Reader) ([]Country, error) {
	scanner := bufio.NewScanner(reader)
	var countries []Country

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 17 {
			continue
		}

		code := strings.TrimSpace(parts[0])
		capitalName := strings.TrimSpace(parts[5])
		if code == "" || capitalName == "" {
			continue
		}

		geonameID, _ := strconv.Atoi(parts[16])
		countries = append(countries, Country{
			Code:        code,
			Name:        strings.TrimSpace(parts[4]),
			CapitalName: capitalName,
			GeonameID:   geonameID,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan countryInfo.txt: %w", err)
	}

	return countries, nil
}

// ParseCapitals parses cities1000.txt (or cities1000.zip) and keeps national capitals, keyed by country code
func (p *Parser) ParseCapitals() (map[string]Capital, error) {
	rc, err := p.open("cities1000")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return parseCapitalsFromReader(rc)
}

func parseCapitalsFromReader(reader io.Reader) (map[string]Capital, error) {
	buf := make([]byte, 0, 64*1024)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(buf, 1024*1024)
	capitals := make(map[string]Capital)

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 19 || parts[7] != featureCapital {
			continue
		}

		id, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		lat, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			continue
		}

		lon, err := strconv.ParseFloat(parts[5], 64)
		if err != nil {
			continue
		}

		code := parts[8]
		if _, seen := capitals[code]; seen {
			continue
		}
		capitals[code] = Capital{
			GeonameID:   id,
			CountryCode: code,
			Name:        parts[1],
			Lat:         lat,
			Lon:         lon,
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cities: %w", err)
	}

	return capitals, nil
}

// ParseAlternateNames streams alternateNames.txt and collects names for the given geonameids
func (p *Parser) ParseAlternateNames(ids map[int]bool) (Names, error) {
	rc, err := p.open("alternateNames")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return p.parseAlternateNamesFromReader(rc, ids)
}

func (p *Parser) parseAlternateNamesFromReader(reader io.Reader, ids map[int]bool) (Names, error) {
	buf := make([]byte, 0, 64*1024)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(buf, 1024*1024)

	names := make(Names)
	// geonameid:lang pairs already set from a preferred name
	preferred := make(map[string]bool)

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 4 {
			continue
		}

		geonameID, err := strconv.Atoi(parts[1])
		if err != nil || !ids[geonameID] {
			continue
		}

		lang := parts[2]
		name := strings.TrimSpace(parts[3])
		if name == "" || lang == "" || technicalLangs[lang] {
			continue
		}

		// colloquial, historic
		if len(parts) > 6 && parts[6] == "1" {
			continue
		}
		if len(parts) > 7 && parts[7] == "1" {
			continue
		}

		isPreferred := len(parts) > 4 && parts[4] == "1"

		if len(lang) > 2 {
			lang = lang[:2]
		}
		lang = strings.ToLower(lang)

		if len(p.allowedLanguages) > 0 && !p.allowedLanguages[lang] {
			continue
		}

		byLang, ok := names[geonameID]
		if !ok {
			byLang = make(map[string]string)
			names[geonameID] = byLang
		}

		key := fmt.Sprintf("%d:%s", geonameID, lang)
		if _, exists := byLang[lang]; !exists || (isPreferred && !preferred[key]) {
			byLang[lang] = name
		}
		if isPreferred {
			preferred[key] = true
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan alternateNames: %w", err)
	}

	return names, nil
}

// open returns <base>.zip's first matching .txt entry when present, else <base>.txt
func (p *Parser) open(base string) (io.ReadCloser, error) {
	zipPath := filepath.Join(p.dataDir, base+".zip")
	if _, err := os.Stat(zipPath); err == nil {
		return openFromZip(zipPath, base)
	}

	filePath := filepath.Join(p.dataDir, base+".txt")
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s.txt: %w", base, err)
	}
	return file, nil
}

type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z zipEntry) Close() error {
	err := z.ReadCloser.Close()
	if cerr := z.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func openFromZip(zipPath, base string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var target *zip.File
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, base+".txt") {
			target = f
			break
		}
		if target == nil && strings.HasSuffix(f.Name, ".txt") {
			target = f
		}
	}
	if target == nil {
		r.Close()
		return nil, fmt.Errorf("no txt file found in %s", zipPath)
	}

	rc, err := target.Open()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to open file in zip: %w", err)
	}
	return zipEntry{ReadCloser: rc, archive: r}, nil
}
