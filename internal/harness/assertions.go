package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/updatelog/internal/record"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

// check evaluates one assertion against the final records, which are in
// display order.
func (h *Harness) check(a Assertion, records []record.Record) error {
	switch a.Type {
	case AssertRecord:
		id, err := h.resolve(a.Ref)
		if err != nil {
			return err
		}
		r, ok := findRecord(records, id)
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("record %s", a.Ref), Actual: "no such record"}
		}
		if errs := matchRecord(a.Expect, r); len(errs) > 0 {
			return fmt.Errorf("record %s: %s", a.Ref, strings.Join(errs, "; "))
		}
		return nil

	case AssertAbsent:
		id, err := h.resolve(a.Ref)
		if err != nil {
			return err
		}
		if _, ok := findRecord(records, id); ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("record %s to be gone", a.Ref), Actual: "record exists"}
		}
		return nil

	case AssertClientOrders:
		client, _ := record.NormalizeClient(a.Client)
		got := []int64{}
		for _, r := range records {
			if r.Client == client {
				got = append(got, r.ClientOrder)
			}
		}
		want := a.Orders
		if want == nil {
			want = []int64{}
		}
		if !slices.Equal(got, want) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
		}
		return nil

	case AssertGroups:
		got := []string{}
		for _, r := range records {
			if len(got) == 0 || got[len(got)-1] != r.Client {
				got = append(got, r.Client)
			}
		}
		want := a.Clients
		if want == nil {
			want = []string{}
		}
		if !slices.Equal(got, want) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%q", want), Actual: fmt.Sprintf("%q", got)}
		}
		return nil

	case AssertCount:
		if len(records) != a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d records", a.Count), Actual: fmt.Sprintf("%d", len(records))}
		}
		return nil

	case AssertInvariants:
		violations := CheckInvariants(records, a.Contiguous)
		if len(violations) == 0 {
			return nil
		}
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.String()
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// matchRecord compares the set fields of want with r.
func matchRecord(want *RecordExpect, r record.Record) []string {
	var errs []string
	if want.Client != nil && r.Client != *want.Client {
		errs = append(errs, fmt.Sprintf("client: expected %q, got %q", *want.Client, r.Client))
	}
	if want.GlobalOrder != nil && r.GlobalOrder != *want.GlobalOrder {
		errs = append(errs, fmt.Sprintf("global_order: expected %d, got %d", *want.GlobalOrder, r.GlobalOrder))
	}
	if want.ClientOrder != nil && r.ClientOrder != *want.ClientOrder {
		errs = append(errs, fmt.Sprintf("client_order: expected %d, got %d", *want.ClientOrder, r.ClientOrder))
	}
	if want.FirstAppearance != nil && r.ClientFirstAppearance != *want.FirstAppearance {
		errs = append(errs, fmt.Sprintf("client_first_appearance: expected %d, got %d", *want.FirstAppearance, r.ClientFirstAppearance))
	}
	return errs
}

func findRecord(records []record.Record, id int64) (record.Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return record.Record{}, false
}
