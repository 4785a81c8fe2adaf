package client

import "bytes"

// progressReader reports the share of the body consumed by the transport.
type progressReader struct {
	r     *bytes.Reader
	total int64
	read  int64
	last  int
	fn    func(int)
}

func newProgressReader(b []byte, fn func(int)) *progressReader {
	return &progressReader{r: bytes.NewReader(b), total: int64(len(b)), fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.fn != nil && p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}
