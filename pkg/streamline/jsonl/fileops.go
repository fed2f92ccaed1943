package jsonl

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/asears/go-streamline/pkg/streamline"
)

// FileStats summarises a file operation.
type FileStats struct {
	Read    int64
	Written int64
}

// FilterFile streams inPath through pred and writes the values that
// satisfy it to outPath.
func FilterFile[T any](ctx context.Context, inPath, outPath string, pred func(item T) bool) (*FileStats, error) {
	return runFileOp(ctx, "jsonl filter", inPath, outPath,
		streamline.New[T]().Filter(pred))
}

// TransformFile streams inPath through fn and writes the transformed
// values to outPath.
func TransformFile[T any](ctx context.Context, inPath, outPath string, fn func(ctx context.Context, item T) (T, error)) (*FileStats, error) {
	return runFileOp(ctx, "jsonl transform", inPath, outPath,
		streamline.New[T]().Map(fn))
}

// WriteAll drains src, which may be a generator, into outPath and returns
// the number of values written.
func WriteAll[T any](ctx context.Context, outPath string, src streamline.Source[T]) (int64, error) {
	out, err := os.Create(outPath)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to create %s", outPath)
	}
	defer out.Close()

	writer := NewWriter[T](out)
	if err := streamline.New[T]().Execute(ctx, src, writer); err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Info().
		Str("output", outPath).
		Int64("written", writer.Records()).
		Msg("jsonl write complete")

	return writer.Records(), nil
}

func runFileOp[T any](ctx context.Context, op, inPath, outPath string, pipe *streamline.Pipeline[T, T]) (*FileStats, error) {
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

	reader := NewReader[T](in)
	writer := NewWriter[T](out)

	if err := pipe.Execute(ctx, reader, writer); err != nil {
		return nil, err
	}

	stats := &FileStats{
		Read:    reader.Records(),
		Written: writer.Records(),
	}

	zerolog.Ctx(ctx).Info().
		Str("input", inPath).
		Str("output", outPath).
		Int64("read", stats.Read).
		Int64("written", stats.Written).
		Msg(op + " complete")

	return stats, nil
}
