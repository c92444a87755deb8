package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChannelSource implements pgx.CopyFromSource by reading rows from a
// channel, giving natural backpressure between a producer (CSV reader,
// compute output) and the COPY writer. The values func extracts the COPY
// column values from a row, so one row type can feed both its raw and its
// derived table.
type ChannelSource[T any] struct {
	ch      <-chan T
	values  func(T) []any
	current T
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource[T any](ch <-chan T, values func(T) []any) *ChannelSource[T] {
	return &ChannelSource[T]{ch: ch, values: values}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource[T]) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource[T]) Values() ([]any, error) {
	return s.values(s.current), nil
}

// Err returns any error encountered during iteration.
func (s *ChannelSource[T]) Err() error {
	return nil
}

var _ pgx.CopyFromSource = (*ChannelSource[any])(nil)

// CopyAll bulk-loads an in-memory slice into table via the COPY protocol.
func CopyAll[T any](ctx context.Context, pool *pgxpool.Pool, table pgx.Identifier, columns []string, rows []T, values func(T) []any) (int64, error) {
	ch := make(chan T, 256)
	go func() {
		defer close(ch)
		for _, r := range rows {
			select {
			case ch <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return pool.CopyFrom(ctx, table, columns, NewChannelSource(ch, values))
}
