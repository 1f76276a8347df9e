package uniprot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/peptiscan/internal/model"
)

const (
	// DefaultSearchLimit is the result cap when the caller asks for none.
	DefaultSearchLimit = 10

	// MaxSearchLimit caps one search request.
	MaxSearchLimit = 20

	// secretedFilter restricts searches to reviewed human proteins with a
	// secreted subcellular location, the population dibasic processing
	// applies to.
	secretedFilter = " AND (organism_id:9606) AND (reviewed:true) AND (cc_subcellular_location:Secreted)"

	// maxSearchBody limits the search response size.
	maxSearchBody = 16 * 1024 * 1024
)

// accessionPattern matches the UniProtKB accession format, e.g. P01189 or
// A0A075B6H9.
var accessionPattern = regexp.MustCompile(`^[OPQ][0-9][A-Z0-9]{3}[0-9]$|^[A-NR-Z][0-9]([A-Z][A-Z0-9]{2}[0-9]){1,2}$`)

// IsAccession reports whether the query looks like a UniProtKB accession
// rather than a gene name.
func IsAccession(query string) bool {
	return accessionPattern.MatchString(strings.ToUpper(strings.TrimSpace(query)))
}

// SearchResult is one secreted precursor candidate with the analysis
// parameters its annotations suggest.
type SearchResult struct {
	// Entry is the matched precursor.
	Entry *Entry

	// Length is the precursor length in residues.
	Length int

	// FASTAHeader is a ready-to-use header for the precursor.
	FASTAHeader string

	// Recommended is the parameter set derived from the entry's
	// annotations.
	Recommended model.Parameters
}

// searchResponse mirrors the UniProtKB search envelope.
type searchResponse struct {
	Results []entryResponse `json:"results"`
}

// Search finds reviewed, secreted human precursors matching a gene name or
// accession. Queries in accession form search the accession field; anything
// else searches gene names. Results carry recommended analysis parameters
// derived from each entry's annotations.
//
// An empty result set is not an error: the query simply matched no secreted
// protein.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrNotFound)
	}
	if limit < 1 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	field := "gene"
	if IsAccession(query) {
		field = "accession"
	}
	uniprotQuery := fmt.Sprintf("(%s:%s)%s", field, query, secretedFilter)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("query", uniprotQuery)
	params.Set("format", "json")
	params.Set("size", fmt.Sprintf("%d", limit))
	params.Set("fields", entryFields)
	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var raw searchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}

	results := make([]SearchResult, 0, len(raw.Results))
	for _, rawEntry := range raw.Results {
		// Entries without a sequence or accession cannot drive an
		// analysis; skip them rather than fail the whole search.
		if rawEntry.Sequence.Value == "" || rawEntry.PrimaryAccession == "" {
			continue
		}

		entry := rawEntry.toEntry()
		results = append(results, SearchResult{
			Entry:       entry,
			Length:      len(entry.Sequence),
			FASTAHeader: fastaHeader(entry),
			Recommended: RecommendedParameters(entry),
		})
	}

	return results, nil
}

// RecommendedParameters derives an analysis parameter set from an entry's
// annotations. The signal peptide length comes from the annotated signal
// feature; the site threshold scales with how many curated peptides the
// precursor carries; the spacing loosens with precursor length.
func RecommendedParameters(entry *Entry) model.Parameters {
	params := model.DefaultParameters()

	if entry.SignalPeptideEnd > 0 {
		params.SignalPeptideLength = entry.SignalPeptideEnd
	}

	// A precursor processed into many curated peptides was cut at many
	// sites; require proportionally more evidence before extracting.
	estimatedSites := float64(len(entry.Peptides)) * 1.5
	switch {
	case estimatedSites > 12:
		params.MinCleavageSites = 5
	case estimatedSites > 8:
		params.MinCleavageSites = 4
	case estimatedSites > 5:
		params.MinCleavageSites = 3
	default:
		params.MinCleavageSites = 2
	}

	switch {
	case len(entry.Sequence) < 150:
		params.MinCleavageSpacing = 3
	case len(entry.Sequence) < 300:
		params.MinCleavageSpacing = 4
	default:
		params.MinCleavageSpacing = 5
	}

	return params
}

// fastaHeader builds a FASTA header line for an entry in the conventional
// sp|ACCESSION|GENE_HUMAN form.
func fastaHeader(entry *Entry) string {
	gene := entry.GeneName
	if gene == "" {
		gene = "UNKN"
	}
	name := entry.ProteinName
	if name == "" {
		name = "Uncharacterized protein"
	}
	return fmt.Sprintf(">sp|%s|%s_HUMAN %s", entry.Accession, gene, name)
}
