package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/crimson-sun/fareline/internal/model"
	"github.com/crimson-sun/fareline/internal/output"
)

func testArtifacts() output.Artifacts {
	return output.Artifacts{
		Canonical:  []model.CanonicalRecord{model.NewRecord()},
		Quarantine: []model.QuarantinedEntry{{Index: 0, Sample: model.RawEntry(`{"foo":"bar"}`)}},
		Audit:      model.AuditSummary{CountsByTag: map[model.VariantTag]int{model.TagUnknown: 1}},
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestCommitWritesSingleDocument(t *testing.T) {
	out := captureStdout(func() {
		o := New(false)
		if err := o.Commit(context.Background(), testArtifacts()); err != nil {
			t.Fatalf("Commit error: %v", err)
		}
	})

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	for _, key := range []string{"canonical", "quarantine", "audit"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing %q in output", key)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("compact output should be a single line, got %q", out)
	}
}

func TestCommitPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, true).Commit(context.Background(), output.Artifacts{}); err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"canonical\": []") {
		t.Errorf("expected indented empty canonical array, got:\n%s", buf.String())
	}
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestCommitWriteError(t *testing.T) {
	err := NewWriter(errWriter{}, false).Commit(context.Background(), testArtifacts())
	if !errors.Is(err, output.ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}
