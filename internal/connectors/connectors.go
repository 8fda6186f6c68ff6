package connectors

import "context"

// TabularSink receives the finished import sheet, header first.
type TabularSink interface {
	Push(ctx context.Context, header []string, rows [][]string) error
}
