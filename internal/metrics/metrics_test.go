package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/render"
	"github.com/goliatone/go-blockkit/pkg/sanitize"
)

func TestObserverCountsRenders(t *testing.T) {
	obs := New()
	obs.ModuleRendered("hero", render.OutcomeRendered, time.Millisecond)
	obs.ModuleRendered("hero", render.OutcomeRendered, time.Millisecond)
	obs.ModuleRendered("hero", render.OutcomeDeduped, time.Millisecond)

	if got := testutil.ToFloat64(obs.renders.WithLabelValues("hero", "rendered")); got != 2 {
		t.Fatalf("rendered count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(obs.renders.WithLabelValues("hero", "deduped")); got != 1 {
		t.Fatalf("deduped count = %v, want 1", got)
	}
}

func TestReasonLabel(t *testing.T) {
	cases := map[string]error{
		"privilege":  sanitize.ErrPrivilegeRequired,
		"denied":     &sanitize.RejectionError{Reason: sanitize.ErrDeniedConstruct, Construct: "eval()"},
		"unbalanced": sanitize.ErrUnbalanced,
		"other":      errors.New("boom"),
	}
	for want, err := range cases {
		if got := ReasonLabel(err); got != want {
			t.Fatalf("ReasonLabel(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestObserverWiredIntoRenderer(t *testing.T) {
	obs := New()
	r, err := render.New(render.WithObserver(obs))
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	r.Render(module.Definition{ID: "bad", HTMLTemplate: "<p>x</p>", JSSource: "eval('1')"}, nil, render.RenderOptions{Elevated: true})

	if got := testutil.ToFloat64(obs.rejected.WithLabelValues("bad", "denied")); got != 1 {
		t.Fatalf("rejected count = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	obs.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `blockkit_scripts_rejected_total{module="bad",reason="denied"} 1`) {
		t.Fatalf("exposition missing rejection counter:\n%s", body)
	}
}
