package form

import (
	"context"
	"errors"
	"io"
)

var errTooLarge = errors.New("file exceeds size limit")

// readLimited reads r up to limit bytes, checking ctx between chunks.
func readLimited(ctx context.Context, r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, errors.New("reader is nil")
	}
	lr := io.LimitReader(r, limit+1)
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := lr.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if int64(len(buf)) > limit {
			return nil, errTooLarge
		}
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
