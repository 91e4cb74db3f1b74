package optimize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeywords_PlainList(t *testing.T) {
	in := "# targets\nroof repair\n\nRoof Repair\n  austin   roofers \n"
	got, err := ParseKeywords(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"roof repair", "austin roofers"}, got)
}

func TestParseKeywords_CSVWithHeader(t *testing.T) {
	in := "Keyword,Volume,Difficulty\nroof repair,1200,35\n\"roofing, austin\",300,20\n"
	got, err := ParseKeywords(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"roof repair", "roofing, austin"}, got)
}

func TestParseKeywords_MalformedCSV(t *testing.T) {
	_, err := ParseKeywords(strings.NewReader("\"unterminated,1\n"))
	assert.Error(t, err)
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitKeywords(" a, b  c ,,A"))
	assert.Nil(t, SplitKeywords(""))
}

func TestMerge(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Merge([]string{"a", "b"}, []string{"B", "c"}))
}
