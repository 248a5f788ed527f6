package engine

import (
	"context"

	"github.com/roach88/updatelog/internal/record"
)

// batchState is the transient per-merge accumulator: for each client seen in
// the batch, its first appearance and its running client_order. It is seeded
// lazily from the store on a client's first row and discarded with the call.
type batchState struct {
	tx      record.Tx
	clients map[string]*batchClient
}

type batchClient struct {
	firstAppearance int64
	order           int64
}

func newBatchState(tx record.Tx) *batchState {
	return &batchState{tx: tx, clients: make(map[string]*batchClient)}
}

// client returns the state for client, creating it on first sight. global is
// the global_order of the row being processed; it becomes the client's first
// appearance when the store has no earlier record of the client.
func (b *batchState) client(ctx context.Context, client string, global int64) (*batchClient, error) {
	if c, ok := b.clients[client]; ok {
		return c, nil
	}

	first, known, err := b.tx.FirstAppearance(ctx, client, 0)
	if err != nil {
		return nil, err
	}
	if !known {
		first = global
	}

	maxOrder, err := b.tx.MaxClientOrder(ctx, client, 0)
	if err != nil {
		return nil, err
	}

	c := &batchClient{firstAppearance: first, order: maxOrder}
	b.clients[client] = c
	return c, nil
}

// next advances and returns the client's order counter.
func (c *batchClient) next() int64 {
	c.order++
	return c.order
}
