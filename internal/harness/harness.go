package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/record"
	"github.com/roach88/updatelog/internal/store"
	"github.com/roach88/updatelog/internal/testutil"
)

// Harness executes one scenario against a private engine and store.
type Harness struct {
	name    string
	store   *store.Store
	engine  *engine.Engine
	aliases map[string]int64
}

// outcome is what one executed step produced.
type outcome struct {
	err    error
	count  int
	record *record.Record
	merge  *engine.MergeResult
}

// Run executes a scenario on a fresh in-memory store.
//
// The returned error reports a broken scenario (unknown alias, failing setup
// step, store failure). Failed expectations and assertions are reported in
// Result.Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with an explicit context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	opts := []engine.Option{
		engine.WithClock(testutil.NewStepClock(time.Second)),
		engine.WithBatchIDs(testutil.NewSequenceIDs("batch")),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if len(scenario.SkipLabels) > 0 {
		opts = append(opts, engine.WithSkipLabels(scenario.SkipLabels...))
	}

	h := &Harness{
		name:    scenario.Name,
		store:   st,
		engine:  engine.New(st, opts...),
		aliases: make(map[string]int64),
	}

	result := NewResult()

	for i, step := range scenario.Setup {
		out, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
		result.addTrace(out.event(step))
		if out.err != nil {
			return nil, fmt.Errorf("setup[%d] %s failed: %w", i, step.Op, out.err)
		}
	}

	for i, step := range scenario.Flow {
		out, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("flow[%d]: %w", i, err)
		}
		result.addTrace(out.event(step))
		for _, msg := range checkExpect(step.Expect, out) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Op, msg))
		}
	}

	records, err := st.List(ctx, record.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	for _, r := range records {
		result.Records = append(result.Records, stateOf(r))
	}

	for i, a := range scenario.Assertions {
		if err := h.check(a, records); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] %s: %v", i, a.Type, err))
		}
	}

	return result, nil
}

// execute runs one step. The returned error means the step itself could not
// be executed; engine failures land in outcome.err.
func (h *Harness) execute(ctx context.Context, step Step) (outcome, error) {
	var out outcome

	switch step.Op {
	case OpCreate:
		r, err := h.engine.Create(ctx, step.Client, step.Content)
		out.err = err
		if err == nil {
			out.record = &r
			h.bind(step.As, r.ID)
		}

	case OpUpdate:
		id, err := h.resolve(step.Ref)
		if err != nil {
			return out, err
		}
		r, err := h.engine.Update(ctx, id, step.Client, step.Content)
		out.err = err
		if err == nil {
			out.record = &r
			h.bind(step.As, r.ID)
		}

	case OpDelete:
		id, err := h.resolve(step.Ref)
		if err != nil {
			return out, err
		}
		out.count, out.err = h.engine.Delete(ctx, id)

	case OpBulkDelete:
		ids := make([]int64, 0, len(step.Refs))
		for _, ref := range step.Refs {
			id, err := h.resolve(ref)
			if err != nil {
				return out, err
			}
			ids = append(ids, id)
		}
		out.count, out.err = h.engine.BulkDelete(ctx, ids)

	case OpReorder:
		dragged, err := h.resolve(step.Dragged)
		if err != nil {
			return out, err
		}
		target, err := h.resolve(step.Target)
		if err != nil {
			return out, err
		}
		out.count, out.err = h.engine.Reorder(ctx, dragged, target)

	case OpMerge:
		res, err := h.engine.Merge(ctx, step.Rows, engine.MergeOptions{Source: h.name})
		out.err = err
		if err == nil {
			out.merge = &res
			out.count = res.Imported
			if len(step.Aliases) > len(res.Records) {
				return out, fmt.Errorf("merge imported %d records but names %d", len(res.Records), len(step.Aliases))
			}
			for i, alias := range step.Aliases {
				h.bind(alias, res.Records[i].ID)
			}
		}

	case OpRenumber:
		out.count, out.err = h.engine.Renumber(ctx, step.Client)

	case OpBackfill:
		out.count, out.err = h.engine.Backfill(ctx)

	default:
		return out, fmt.Errorf("unknown op %q", step.Op)
	}

	return out, nil
}

// bind binds alias to id. An empty alias is ignored.
func (h *Harness) bind(alias string, id int64) {
	if alias != "" {
		h.aliases[alias] = id
	}
}

// resolve turns an alias or a "#<id>" literal into a record id.
func (h *Harness) resolve(ref string) (int64, error) {
	if raw, ok := strings.CutPrefix(ref, "#"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid id literal %q", ref)
		}
		return id, nil
	}
	id, ok := h.aliases[ref]
	if !ok {
		return 0, fmt.Errorf("unknown record alias %q", ref)
	}
	return id, nil
}

// event builds the trace entry for step.
func (o outcome) event(step Step) TraceEvent {
	ev := TraceEvent{
		Op:      step.Op,
		Outcome: outcomeOf(o.err),
		Count:   o.count,
	}

	switch {
	case step.As != "":
		ev.Ref = step.As
	case step.Ref != "":
		ev.Ref = step.Ref
	case step.Dragged != "":
		ev.Ref = step.Dragged
	case step.Op == OpRenumber:
		ev.Ref = step.Client
	}

	if o.record != nil {
		ev.RecordID = o.record.ID
	}
	return ev
}

// outcomeOf maps an engine error to its scenario error kind.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case engine.IsNotFound(err):
		return OutcomeNotFound
	case engine.IsValidation(err):
		return OutcomeValidation
	default:
		return OutcomeStorage
	}
}

// checkExpect compares a step outcome with its expect clause.
func checkExpect(want *Expect, out outcome) []string {
	got := outcomeOf(out.err)

	if want == nil {
		if out.err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", out.err)}
		}
		return nil
	}

	wantOutcome := want.Error
	if wantOutcome == "" {
		wantOutcome = OutcomeOK
	}
	if got != wantOutcome {
		msg := fmt.Sprintf("expected outcome %s, got %s", wantOutcome, got)
		if out.err != nil {
			msg += fmt.Sprintf(" (%v)", out.err)
		}
		return []string{msg}
	}
	if out.err != nil {
		return nil
	}

	var errs []string
	if want.Count != nil && out.count != *want.Count {
		errs = append(errs, fmt.Sprintf("expected count %d, got %d", *want.Count, out.count))
	}
	if want.Imported != nil || want.Skipped != nil {
		if out.merge == nil {
			errs = append(errs, "imported/skipped only apply to merge")
		} else {
			if want.Imported != nil && out.merge.Imported != *want.Imported {
				errs = append(errs, fmt.Sprintf("expected imported %d, got %d", *want.Imported, out.merge.Imported))
			}
			if want.Skipped != nil && out.merge.Skipped != *want.Skipped {
				errs = append(errs, fmt.Sprintf("expected skipped %d, got %d", *want.Skipped, out.merge.Skipped))
			}
		}
	}
	if want.Record != nil {
		if out.record == nil {
			errs = append(errs, "record expectation on a step that returns no record")
		} else {
			errs = append(errs, matchRecord(want.Record, *out.record)...)
		}
	}
	return errs
}
