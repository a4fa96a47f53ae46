package download

import "hash"

// progressWriter counts and hashes bytes as they are written to the
// destination file and reports the completed fraction when the total is known.
type progressWriter struct {
	total    int64
	written  int64
	hash     hash.Hash
	onUpdate func(written int64)
	report   func(fraction float64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.hash.Write(p)
	if err != nil {
		return n, err
	}
	pw.written += int64(n)
	if pw.onUpdate != nil {
		pw.onUpdate(pw.written)
	}
	if pw.total > 0 && pw.report != nil {
		fraction := float64(pw.written) / float64(pw.total)
		if fraction > 1 {
			fraction = 1
		}
		pw.report(fraction)
	}
	return n, nil
}
