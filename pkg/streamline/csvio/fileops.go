package csvio

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/asears/go-streamline/pkg/streamline"
	"github.com/asears/go-streamline/pkg/streamline/record"
)

// FileStats summarises a file operation.
type FileStats struct {
	Read      int64
	Written   int64
	Padded    int64
	Truncated int64
}

// FilterFile streams inPath through pred and writes the records that
// satisfy it to outPath.
func FilterFile(ctx context.Context, inPath, outPath string, pred func(rec *record.Record) bool) (*FileStats, error) {
	return runFileOp(ctx, "csv filter", inPath, outPath,
		streamline.New[*record.Record]().Filter(pred))
}

// TransformFile streams inPath through fn and writes the transformed
// records to outPath.
func TransformFile(ctx context.Context, inPath, outPath string, fn func(ctx context.Context, rec *record.Record) (*record.Record, error)) (*FileStats, error) {
	return runFileOp(ctx, "csv transform", inPath, outPath,
		streamline.New[*record.Record]().Map(fn))
}

// Aggregate folds every record of inPath into an accumulator, producing no
// output file.
func Aggregate[A any](ctx context.Context, inPath string, seed A, fold func(acc A, rec *record.Record) (A, error)) (A, error) {
	acc := seed

	in, err := os.Open(inPath)
	if err != nil {
		return acc, errors.Wrapf(err, "unable to open %s", inPath)
	}

	reader := NewReader(in)
	sink := streamline.SinkFunc[*record.Record](func(_ context.Context, rec *record.Record) error {
		acc, err = fold(acc, rec)

		return err
	})

	if err := streamline.New[*record.Record]().Execute(ctx, reader, sink); err != nil {
		return seed, err
	}

	zerolog.Ctx(ctx).Info().
		Str("input", inPath).
		Int64("rows", reader.Rows()).
		Msg("csv aggregate complete")

	return acc, nil
}

func runFileOp(ctx context.Context, op, inPath, outPath string, pipe *streamline.Pipeline[*record.Record, *record.Record]) (*FileStats, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", inPath)
	}

	out, err := os.Create(outPath)
	if err != nil {
		_ = in.Close()

		return nil, errors.Wrapf(err, "unable to create %s", outPath)
	}
	defer out.Close()

	reader := NewReader(in)
	writer := NewWriter(out)

	if err := pipe.Execute(ctx, reader, writer); err != nil {
		return nil, err
	}
	if err := writer.Flush(); err != nil {
		return nil, err
	}

	stats := &FileStats{
		Read:      reader.Rows(),
		Written:   writer.Rows(),
		Padded:    reader.PaddedRows(),
		Truncated: reader.TruncatedRows(),
	}

	logger := zerolog.Ctx(ctx)
	event := logger.Info().
		Str("input", inPath).
		Str("output", outPath).
		Int64("read", stats.Read).
		Int64("written", stats.Written)
	if stats.Padded > 0 || stats.Truncated > 0 {
		event = event.Int64("padded_rows", stats.Padded).Int64("truncated_rows", stats.Truncated)
	}
	event.Msg(op + " complete")

	return stats, nil
}
