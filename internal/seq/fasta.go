package seq

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Record is a single FASTA record: one header and its concatenated sequence
// lines. The sequence is kept raw here; callers run it through Normalize.
type Record struct {
	// Header is the header line without the leading '>'.
	Header string

	// Accession is the database accession extracted from the header, when
	// the header follows the UniProt "db|ACCESSION|ENTRY Name" convention.
	Accession string

	// Name is the free-text protein name portion of the header.
	Name string

	// Sequence is the raw concatenated sequence text.
	Sequence string
}

// uniprotHeader matches the common UniProt FASTA header layout, e.g.
// "sp|P01308|INS_HUMAN Insulin". The database tag and entry name are
// optional so bare accessions still parse.
var uniprotHeader = regexp.MustCompile(`^(?:\w+\|)?([A-Z0-9]+)\|?([A-Z0-9_]+)?\s*(.*)$`)

// ParseFASTA reads FASTA records from r. Sequence lines are concatenated per
// record; input without any header yields a single headerless record.
//
// Design decision: The parser never fails on malformed content - it returns
// whatever records it could assemble plus the scanner error, if any. Strict
// validation happens later in Normalize, where a precise error (offending
// character, offset) can be reported per record.
func ParseFASTA(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	// Sequence lines can be long when tools write unwrapped FASTA.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []Record
	var current *Record
	var lines []string

	flush := func() {
		if current == nil && len(lines) == 0 {
			return
		}
		if current == nil {
			current = &Record{}
		}
		current.Sequence = strings.Join(lines, "")
		records = append(records, *current)
		current = nil
		lines = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			rec := parseHeader(strings.TrimSpace(line[1:]))
			current = &rec
			continue
		}
		lines = append(lines, line)
	}
	flush()

	return records, scanner.Err()
}

// parseHeader extracts accession and protein name from a FASTA header line.
func parseHeader(header string) Record {
	rec := Record{Header: header}

	m := uniprotHeader.FindStringSubmatch(header)
	if m == nil {
		rec.Name = header
		return rec
	}

	rec.Accession = m[1]
	if rec.Accession == "" {
		rec.Accession = m[2]
	}
	rec.Name = strings.TrimSpace(m[3])
	if rec.Name == "" && m[2] == "" && m[1] != "" && !looksLikeAccession(m[1]) {
		// A single bare word that is not an accession is better treated
		// as a name ("insulin" rather than accession INSULIN).
		rec.Name = rec.Accession
		rec.Accession = ""
	}
	return rec
}

// looksLikeAccession reports whether s resembles a UniProt accession:
// letter-digit mixed, six to ten characters, starting with a letter.
func looksLikeAccession(s string) bool {
	if len(s) < 6 || len(s) > 10 {
		return false
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	hasDigit := false
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			hasDigit = true
		}
	}
	return hasDigit
}
