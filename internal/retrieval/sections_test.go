package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func chunk(section, content string) Chunk {
	return Chunk{
		Content:  content,
		Metadata: ChunkMetadata{SectionTitle: section},
	}
}

func TestFilterCybersecuritySections(t *testing.T) {
	tests := []struct {
		name   string
		chunks []Chunk
		want   int
	}{
		{
			name:   "risk factors section kept",
			chunks: []Chunk{chunk("Item 1A. Risk Factors", "general risks of the business")},
			want:   1,
		},
		{
			name:   "cybersecurity item kept",
			chunks: []Chunk{chunk("Item 1B", "board oversight of threats")},
			want:   1,
		},
		{
			name:   "management discussion kept",
			chunks: []Chunk{chunk("Management's Discussion and Analysis", "results of operations")},
			want:   1,
		},
		{
			name:   "unrelated section dropped",
			chunks: []Chunk{chunk("Item 2. Properties", "we lease office space")},
			want:   0,
		},
		{
			name:   "unrelated section kept on content keyword",
			chunks: []Chunk{chunk("Item 8", "a ransomware attack disrupted operations")},
			want:   1,
		},
		{
			name: "content keyword only counts near the start",
			chunks: []Chunk{chunk("Item 2. Properties",
				strings.Repeat("lease terms and square footage. ", 40)+"data breach")},
			want: 0,
		},
		{
			name:   "empty input",
			chunks: nil,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCybersecuritySections(tt.chunks, nil)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFilterCybersecuritySectionsExtraKeywords(t *testing.T) {
	chunks := []Chunk{chunk("Notes on Litigation", "settlement of shareholder suits")}

	assert.Empty(t, FilterCybersecuritySections(chunks, nil))
	assert.Len(t, FilterCybersecuritySections(chunks, []string{"litigation"}), 1)
}

func TestFilterCybersecuritySectionsPreservesOrder(t *testing.T) {
	chunks := []Chunk{
		chunk("Item 1A", "first"),
		chunk("Item 2", "nothing relevant here"),
		chunk("Cybersecurity", "second"),
	}

	got := FilterCybersecuritySections(chunks, nil)
	assert.Equal(t, []string{"first", "second"}, []string{got[0].Content, got[1].Content})
}
