package metadata

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/flexfold/ensemble/internal/ensemble"
)

const htmlEntryURL = "https://www.uniprot.org/uniprotkb/"

// HTMLFallback resolves a MetadataRecord by scraping the public
// UniProt entry page instead of calling the REST API; Client uses it
// whenever a REST fetch fails (transport error, non-200 status or
// undecodable body).
// It follows the same goquery document-then-Find idiom the teacher
// uses to scrape NCBI clone pages.
type HTMLFallback struct {
	HTTPClient *http.Client
}

func NewHTMLFallback(client *http.Client) *HTMLFallback {
	return &HTMLFallback{HTTPClient: client}
}

var pdbRowPattern = regexp.MustCompile(`^([0-9][A-Za-z0-9]{3})$`)
var chainSpanPattern = regexp.MustCompile(`([A-Za-z0-9]+)(?:/[A-Za-z0-9]+)*\s*=\s*(\d+)-(\d+)`)

func (f *HTMLFallback) Lookup(ctx context.Context, id string) (ensemble.MetadataRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, htmlEntryURL+id+"/entry", nil)
	if err != nil {
		return ensemble.MetadataRecord{}, err
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return ensemble.MetadataRecord{}, fmt.Errorf("metadata: html fallback request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ensemble.MetadataRecord{}, fmt.Errorf("metadata: html fallback got status %d for %s", resp.StatusCode, id)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ensemble.MetadataRecord{}, fmt.Errorf("metadata: html fallback could not parse document: %w", err)
	}

	record := ensemble.MetadataRecord{PrimaryID: id}

	seq := doc.Find("[data-testid='sequence']").First().Text()
	seq = strings.ToUpper(strings.Join(strings.Fields(seq), ""))
	for _, r := range seq {
		record.Sequence = append(record.Sequence, convertOneToThree(r))
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "/pdb/") {
			return
		}
		parts := strings.Split(strings.TrimSuffix(href, "/"), "/")
		candidate := parts[len(parts)-1]
		if !pdbRowPattern.MatchString(candidate) {
			return
		}
		cr := ensemble.CrossRef{StructureID: strings.ToUpper(candidate)}
		row := s.Closest("tr")
		if row.Length() > 0 {
			cr.Method = strings.TrimSpace(row.Find("td").Eq(1).Text())
			if m := chainSpanPattern.FindStringSubmatch(row.Find("td").Eq(3).Text()); m != nil {
				cr.ChainID = m[1]
				fmt.Sscanf(m[2], "%d", &cr.Begin)
				fmt.Sscanf(m[3], "%d", &cr.End)
			}
		}
		record.CrossRefs = append(record.CrossRefs, cr)
	})

	if len(record.Sequence) == 0 && len(record.CrossRefs) == 0 {
		return ensemble.MetadataRecord{}, fmt.Errorf("metadata: html fallback found no usable data for %s", id)
	}
	return record, nil
}
