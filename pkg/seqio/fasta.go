package seqio

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// DefaultLineWidth is the residue count per FASTA line on output.
const DefaultLineWidth = 60

// ReadFASTA parses every record from r.
func ReadFASTA(r io.Reader) ([]Sequence, error) {
	reader := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))

	var out []Sequence
	for {
		s, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse FASTA: %w", err)
		}
		l, ok := s.(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("parse FASTA: unexpected sequence type %T", s)
		}
		out = append(out, NewSequence(l.ID, l.Desc, lettersToString(l.Seq)))
	}
	return out, nil
}

// ReadFirstFASTA returns the first record of a FASTA file (plain or gzip).
func ReadFirstFASTA(path string) (Sequence, error) {
	rc, err := openReader(path)
	if err != nil {
		return Sequence{}, err
	}
	defer rc.Close()

	reader := fasta.NewReader(rc, linear.NewSeq("", nil, alphabet.DNA))
	s, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Sequence{}, fmt.Errorf("%s: %w", path, ErrNoRecords)
	}
	if err != nil {
		return Sequence{}, fmt.Errorf("%s: parse FASTA: %w", path, err)
	}
	l, ok := s.(*linear.Seq)
	if !ok {
		return Sequence{}, fmt.Errorf("%s: unexpected sequence type %T", path, s)
	}
	return NewSequence(l.ID, l.Desc, lettersToString(l.Seq)), nil
}

// WriteFASTA writes each sequence as a header line and residues wrapped at
// width columns. width <= 0 selects DefaultLineWidth.
func WriteFASTA(w io.Writer, width int, seqs ...Sequence) error {
	if width <= 0 {
		width = DefaultLineWidth
	}
	fw := fasta.NewWriter(w, width)
	for _, s := range seqs {
		l := linear.NewSeq(s.ID, alphabet.BytesToLetters([]byte(s.residues)), alphabet.DNA)
		l.Desc = s.Description
		if _, err := fw.Write(l); err != nil {
			return fmt.Errorf("write FASTA record %s: %w", s.ID, err)
		}
	}
	return nil
}

func lettersToString(l alphabet.Letters) string {
	var b strings.Builder
	b.Grow(len(l))
	for _, c := range l {
		b.WriteByte(byte(c))
	}
	return b.String()
}

type gzipFile struct {
	*gzip.Reader
	fh *os.File
}

func (g gzipFile) Close() error {
	gerr := g.Reader.Close()
	if err := g.fh.Close(); err != nil {
		return err
	}
	return gerr
}

// openReader sniffs the gzip magic (1F 8B) or a .gz suffix.
func openReader(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := io.ReadFull(fh, sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return gzipFile{Reader: gr, fh: fh}, nil
	}
	return fh, nil
}
