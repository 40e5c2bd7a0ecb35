package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flexfold/ensemble/internal/ensemble"
)

func TestConvertOneToThree(t *testing.T) {
	testCases := []struct {
		in   rune
		want string
	}{
		{'A', "ALA"},
		{'V', "VAL"},
		{'X', "UNK"},
	}
	for _, tc := range testCases {
		if got := convertOneToThree(tc.in); got != tc.want {
			t.Errorf("convertOneToThree(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLookupFollowsMergeRedirectThenSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/P00001.json":
			w.Write([]byte(`{"primaryAccession":"P00001","entryType":"Inactive","inactiveReason":{"inactiveReasonType":"MERGED","mergeDemergeTo":["P99999"]}}`))
		case "/P99999.json":
			w.Write([]byte(`{"primaryAccession":"P99999","entryType":"Active","sequence":{"value":"AV"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := &Client{HTTPClient: server.Client(), BaseURL: server.URL + "/"}
	record, err := c.Lookup(context.Background(), "P00001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.PrimaryID != "P99999" {
		t.Errorf("PrimaryID = %q, want P99999", record.PrimaryID)
	}
	if len(record.Sequence) != 2 || record.Sequence[0] != "ALA" {
		t.Errorf("Sequence = %v, want [ALA VAL]", record.Sequence)
	}
}

func TestLookupDetectsRedirectLoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"primaryAccession":"P1","entryType":"Inactive","inactiveReason":{"inactiveReasonType":"MERGED","mergeDemergeTo":["P1"]}}`))
	}))
	defer server.Close()

	c := &Client{HTTPClient: server.Client(), BaseURL: server.URL + "/"}
	_, err := c.Lookup(context.Background(), "P1")
	if err == nil {
		t.Fatal("expected a redirect-loop error")
	}
	var engineErr *ensemble.EngineError
	if !errors.As(err, &engineErr) || engineErr.Kind != ensemble.ErrIdentifierUnresolved {
		t.Errorf("err = %v, want an ErrIdentifierUnresolved EngineError", err)
	}
}

func TestParseChainsProperty(t *testing.T) {
	testCases := []struct {
		name         string
		value        string
		wantChain    string
		wantBeginEnd [2]int
	}{
		{name: "single chain", value: "A=12-219", wantChain: "A", wantBeginEnd: [2]int{12, 219}},
		{name: "multi chain keeps first", value: "A/B=5-300", wantChain: "A", wantBeginEnd: [2]int{5, 300}},
		{name: "unparseable returns zero value", value: "not a span", wantChain: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chain, begin, end := parseChainsProperty(tc.value)
			if chain != tc.wantChain {
				t.Errorf("chain = %q, want %q", chain, tc.wantChain)
			}
			if chain != "" && (begin != tc.wantBeginEnd[0] || end != tc.wantBeginEnd[1]) {
				t.Errorf("span = %d-%d, want %d-%d", begin, end, tc.wantBeginEnd[0], tc.wantBeginEnd[1])
			}
		})
	}
}
