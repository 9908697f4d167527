package fastq

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitString(t *testing.T, input string) (head, seq, qual string, n int64) {
	t.Helper()
	var h, s, q bytes.Buffer
	n, err := Split(strings.NewReader(input), Columns{Head: &h, Seq: &s, Qual: &q})
	require.NoError(t, err)
	return h.String(), s.String(), q.String(), n
}

func TestSplit(t *testing.T) {
	input := `@r1 lane=1
ACGT
+
!!!!
@r2
GG
+
##
`
	head, seq, qual, n := splitString(t, input)

	assert.Equal(t, int64(2), n)
	assert.Equal(t, "r1 lane=1\nr2\n", head)
	assert.Equal(t, ">\nACGTGG", seq)
	assert.Equal(t, "!!!!\n##\n", qual)
}

func TestSplitEmptyInput(t *testing.T) {
	head, seq, qual, n := splitString(t, "")

	assert.Equal(t, int64(0), n)
	assert.Empty(t, head)
	assert.Equal(t, SeqSentinel, seq, "sentinel written even for empty input")
	assert.Empty(t, qual)
}

func TestSplitNoTrailingNewline(t *testing.T) {
	head, seq, qual, n := splitString(t, "@r1\nACGT\n+\n!!!!")

	assert.Equal(t, int64(1), n)
	assert.Equal(t, "r1\n", head)
	assert.Equal(t, ">\nACGT", seq)
	assert.Equal(t, "!!!!", qual, "final quality line kept verbatim without newline")
}

func TestSplitCRLFSequenceStripped(t *testing.T) {
	_, seq, _, _ := splitString(t, "@r1\nACGT\r\n+\n!!!!\n")

	assert.Equal(t, ">\nACGT", seq)
}

func TestSplitSeparatorNotValidated(t *testing.T) {
	// Anything on line three is consumed without inspection.
	head, seq, qual, n := splitString(t, "@r1\nAC\n+r1 junk\n!!\n")

	assert.Equal(t, int64(1), n)
	assert.Equal(t, "r1\n", head)
	assert.Equal(t, ">\nAC", seq)
	assert.Equal(t, "!!\n", qual)
}

func TestSplitTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"ends at identifier", "@r1"},
		{"ends after identifier", "@r1\n"},
		{"ends in sequence", "@r1\nACGT"},
		{"ends after sequence", "@r1\nACGT\n"},
		{"ends after separator", "@r1\nACGT\n+\n"},
		{"second record partial", "@r1\nAC\n+\n!!\n@r2\nGG\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h, s, q bytes.Buffer
			_, err := Split(strings.NewReader(tt.input), Columns{Head: &h, Seq: &s, Qual: &q})
			assert.ErrorIs(t, err, ErrTruncatedRecord)
		})
	}
}

func TestSplitEmptyHeaderLine(t *testing.T) {
	var h, s, q bytes.Buffer
	_, err := Split(strings.NewReader("\nACGT\n+\n!!!!\n"), Columns{Head: &h, Seq: &s, Qual: &q})
	assert.ErrorIs(t, err, ErrEmptyHeader)
}

func TestSplitMarkerStrippedUnchecked(t *testing.T) {
	// The leading byte is dropped whatever it is.
	head, _, _, _ := splitString(t, ">odd\nAC\n+\n!!\n")
	assert.Equal(t, "odd\n", head)
}
