package harness

import (
	"fmt"
	"sort"

	"github.com/roach88/updatelog/internal/record"
)

// Invariant rule names reported in violations.
const (
	RuleUniqueGlobalOrder   = "unique_global_order"
	RuleSharedFirstAppear   = "shared_first_appearance"
	RuleUniqueClientOrder   = "unique_client_order"
	RuleContiguousClientSeq = "contiguous_client_order"
	RulePositiveOrderFields = "positive_order_fields"
)

// Violation describes one broken ordering rule.
type Violation struct {
	Rule   string `json:"rule"`
	Client string `json:"client,omitempty"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	if v.Client != "" {
		return fmt.Sprintf("%s [%s]: %s", v.Rule, v.Client, v.Detail)
	}
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

// CheckInvariants verifies the ordering rules over a complete set of records:
//
//   - global_order is positive and unique
//   - every record of a client shares one client_first_appearance
//   - client_order is positive and unique within a client
//   - with contiguous set, each client's client_order values are exactly 1..N
//
// Contiguity is optional because deletes and renames leave gaps until the
// next renumber. Violations are sorted by rule, then client.
func CheckInvariants(records []record.Record, contiguous bool) []Violation {
	var out []Violation

	seenGlobal := make(map[int64]int64)
	firstByClient := make(map[string]int64)
	ordersByClient := make(map[string]map[int64]int64)

	for _, r := range records {
		if r.GlobalOrder <= 0 || r.ClientOrder <= 0 || r.ClientFirstAppearance <= 0 {
			out = append(out, Violation{
				Rule:   RulePositiveOrderFields,
				Client: r.Client,
				Detail: fmt.Sprintf("record %d has (%d, %d, %d)", r.ID, r.GlobalOrder, r.ClientOrder, r.ClientFirstAppearance),
			})
		}

		if other, dup := seenGlobal[r.GlobalOrder]; dup {
			out = append(out, Violation{
				Rule:   RuleUniqueGlobalOrder,
				Detail: fmt.Sprintf("records %d and %d share global_order %d", other, r.ID, r.GlobalOrder),
			})
		} else {
			seenGlobal[r.GlobalOrder] = r.ID
		}

		if first, ok := firstByClient[r.Client]; !ok {
			firstByClient[r.Client] = r.ClientFirstAppearance
		} else if first != r.ClientFirstAppearance {
			out = append(out, Violation{
				Rule:   RuleSharedFirstAppear,
				Client: r.Client,
				Detail: fmt.Sprintf("record %d has %d, group has %d", r.ID, r.ClientFirstAppearance, first),
			})
		}

		orders := ordersByClient[r.Client]
		if orders == nil {
			orders = make(map[int64]int64)
			ordersByClient[r.Client] = orders
		}
		if other, dup := orders[r.ClientOrder]; dup {
			out = append(out, Violation{
				Rule:   RuleUniqueClientOrder,
				Client: r.Client,
				Detail: fmt.Sprintf("records %d and %d share client_order %d", other, r.ID, r.ClientOrder),
			})
		} else {
			orders[r.ClientOrder] = r.ID
		}
	}

	if contiguous {
		for client, orders := range ordersByClient {
			n := int64(len(orders))
			for order := range orders {
				if order < 1 || order > n {
					out = append(out, Violation{
						Rule:   RuleContiguousClientSeq,
						Client: client,
						Detail: fmt.Sprintf("client_order %d outside 1..%d", order, n),
					})
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rule != out[j].Rule {
			return out[i].Rule < out[j].Rule
		}
		if out[i].Client != out[j].Client {
			return out[i].Client < out[j].Client
		}
		return out[i].Detail < out[j].Detail
	})
	return out
}
