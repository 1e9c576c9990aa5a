package testdata

import (
	_ "embed"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a labeled archive entry for classification validation.
type CorpusEntry struct {
	Entry           json.RawMessage `json:"entry"`
	ExpectedTag     string          `json:"expected_tag"`
	ExpectedRecords int             `json:"expected_records"`
	Description     string          `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, errors.Wrap(err, "parse corpus.json")
	}
	return entries, nil
}

// Archive returns the corpus entries as a single JSON array, the shape the
// archive file has on disk.
func Archive() ([]byte, error) {
	entries, err := LoadCorpus()
	if err != nil {
		return nil, err
	}
	raws := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		raws[i] = e.Entry
	}
	return json.Marshal(raws)
}
