package ticket

import (
	"context"
	"strings"
	"unicode"
)

var DefaultKeywords = []string{"ticket", "section", "row", "seat"}

// KeywordScanner recovers printable text embedded in the file and scores it
// by how many ticket keywords it contains.
type KeywordScanner struct {
	Keywords      []string
	MinConfidence float64
	// MinRun is the shortest printable run kept as text.
	MinRun int
}

func NewKeywordScanner() *KeywordScanner {
	return &KeywordScanner{
		Keywords:      DefaultKeywords,
		MinConfidence: MinConfidence,
		MinRun:        4,
	}
}

func (s *KeywordScanner) Scan(ctx context.Context, _ string, content []byte) (OCR, error) {
	if err := ctx.Err(); err != nil {
		return OCR{}, err
	}
	return s.ScanText(extractText(content, s.MinRun)), nil
}

func (s *KeywordScanner) ScanText(text string) OCR {
	lower := strings.ToLower(text)
	found := make([]string, 0, len(s.Keywords))
	for _, kw := range s.Keywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}

	var confidence float64
	if len(s.Keywords) > 0 {
		confidence = float64(len(found)) / float64(len(s.Keywords))
	}
	return OCR{
		Text:          text,
		FoundKeywords: found,
		Confidence:    confidence,
		IsValidTicket: len(found) > 0 && confidence >= s.MinConfidence,
	}
}

func extractText(content []byte, minRun int) string {
	if minRun < 1 {
		minRun = 1
	}

	var out, run strings.Builder
	flush := func() {
		if run.Len() >= minRun {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(strings.TrimSpace(run.String()))
		}
		run.Reset()
	}

	for _, b := range content {
		r := rune(b)
		if b < unicode.MaxASCII && (unicode.IsPrint(r) || r == '\t') {
			run.WriteByte(b)
			continue
		}
		flush()
	}
	flush()
	return out.String()
}
