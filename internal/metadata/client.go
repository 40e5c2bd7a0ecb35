// Package metadata implements the default ensemble.MetadataLookup
// (SPEC_FULL.md §4.L): a UniProt REST/XML-backed resolver with
// redirect-chain following and loop detection, grounded on
// uniprot_data.py's entryType/inactiveReason/mergeDemergeTo handling,
// with an HTML-scraping fallback (internal/metadata/html_fallback.go)
// used whenever a REST fetch fails (transport error, non-200 status or
// undecodable body).
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/flexfold/ensemble/internal/ensemble"
)

const restBaseURL = "https://rest.uniprot.org/uniprotkb/"

// Client is the production MetadataLookup: REST JSON lookup with an
// HTML-scraping fallback.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Fallback   *HTMLFallback
}

// NewClient returns a Client wired to the public UniProt REST
// endpoint, with the HTML fallback enabled.
func NewClient() *Client {
	return &Client{
		HTTPClient: http.DefaultClient,
		BaseURL:    restBaseURL,
		Fallback:   NewHTMLFallback(http.DefaultClient),
	}
}

type entryResponse struct {
	PrimaryAccession string `json:"primaryAccession"`
	EntryType        string `json:"entryType"`
	InactiveReason   *struct {
		InactiveReasonType string   `json:"inactiveReasonType"`
		MergeDemergeTo     []string `json:"mergeDemergeTo"`
	} `json:"inactiveReason"`
	Sequence struct {
		Value string `json:"value"`
	} `json:"sequence"`
	UniProtKBCrossReferences []struct {
		Database   string `json:"database"`
		ID         string `json:"id"`
		Properties []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"properties"`
	} `json:"uniProtKBCrossReferences"`
}

// Lookup implements ensemble.MetadataLookup, following the
// merge/demerge redirect chain until an active record is found, with
// loop detection across the ids visited so far.
func (c *Client) Lookup(ctx context.Context, id string) (ensemble.MetadataRecord, error) {
	visited := map[string]bool{}
	current := id
	for {
		if visited[current] {
			return ensemble.MetadataRecord{}, &ensemble.EngineError{
				Kind:    ensemble.ErrIdentifierUnresolved,
				Context: id,
				Msg:     fmt.Sprintf("redirect loop detected at %q", current),
			}
		}
		visited[current] = true

		entry, err := c.fetchEntry(ctx, current)
		if err != nil {
			if c.Fallback != nil {
				log.Printf("flexfold: metadata: REST lookup for %s failed (%v), trying HTML fallback", current, err)
				record, ferr := c.Fallback.Lookup(ctx, current)
				if ferr != nil {
					return ensemble.MetadataRecord{}, &ensemble.EngineError{
						Kind: ensemble.ErrIdentifierUnresolved, Context: id,
						Msg: "REST lookup and HTML fallback both failed", Inner: ferr,
					}
				}
				return record, nil
			}
			return ensemble.MetadataRecord{}, &ensemble.EngineError{
				Kind: ensemble.ErrIdentifierUnresolved, Context: id,
				Msg: "metadata lookup failed", Inner: err,
			}
		}

		if entry.EntryType != "Inactive" || entry.InactiveReason == nil || len(entry.InactiveReason.MergeDemergeTo) == 0 {
			return toRecord(entry), nil
		}

		log.Printf("flexfold: metadata: %s is inactive (%s), following redirect to %s",
			current, entry.InactiveReason.InactiveReasonType, entry.InactiveReason.MergeDemergeTo[0])
		current = entry.InactiveReason.MergeDemergeTo[0]
	}
}

func (c *Client) fetchEntry(ctx context.Context, id string) (entryResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+id+".json", nil)
	if err != nil {
		return entryResponse{}, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return entryResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return entryResponse{}, fmt.Errorf("metadata: unexpected status %d for %s", resp.StatusCode, id)
	}
	var entry entryResponse
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return entryResponse{}, err
	}
	return entry, nil
}

func toRecord(entry entryResponse) ensemble.MetadataRecord {
	tokens := make([]string, 0, len(entry.Sequence.Value))
	for _, r := range entry.Sequence.Value {
		tokens = append(tokens, convertOneToThree(r))
	}

	record := ensemble.MetadataRecord{PrimaryID: entry.PrimaryAccession, Sequence: tokens}
	for _, xr := range entry.UniProtKBCrossReferences {
		if xr.Database != "PDB" {
			continue
		}
		cr := ensemble.CrossRef{StructureID: xr.ID}
		for _, p := range xr.Properties {
			switch p.Key {
			case "Method":
				cr.Method = p.Value
			case "Chains":
				cr.ChainID, cr.Begin, cr.End = parseChainsProperty(p.Value)
			}
		}
		record.CrossRefs = append(record.CrossRefs, cr)
	}
	return record
}
