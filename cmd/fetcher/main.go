package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"
	"github.com/joho/godotenv"

	"secwatch/fetcher"
	"secwatch/internal"
	"secwatch/internal/entities"
	"secwatch/internal/retrieval"
)

var relevantForms = map[string]bool{
	"10-K":  true,
	"10-Q":  true,
	"8-K":   true,
	"8-K/A": true,
}

func main() {
	godotenv.Load()

	logger, err := internal.NewLogger()
	if err != nil {
		log.Panic(err)
	}

	years := 5
	if v := os.Getenv("FETCH_YEARS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			years = parsed
		}
	}

	ctx := context.Background()
	edgar := fetcher.NewEdgarClient()
	searcher := retrieval.NewSearcher(logger)

	splitter, err := fetcher.NewSplitter(2000, 1000)
	if err != nil {
		log.Panic(err)
	}

	for _, company := range entities.Companies() {
		logger.Infow("fetching filings", "company", company.Name, "cik", company.CIK)

		filings, err := edgar.Filings(ctx, company.CIK, years)
		if err != nil {
			logger.Errorw("failed to fetch filings", "company", company.Name, "error", err)
			continue
		}

		indexed := 0
		for _, filing := range filings {
			if !relevantForms[strings.ToUpper(filing.Form)] {
				continue
			}

			n, err := indexFiling(ctx, edgar, searcher, splitter, filing)
			if err != nil {
				logger.Errorw("failed to index filing",
					"company", company.Name,
					"accession", filing.AccessionNumber,
					"error", err,
				)
				continue
			}
			indexed += n

			// Stay under the SEC's request rate limit.
			time.Sleep(100 * time.Millisecond)
		}

		logger.Infow("indexed company filings", "company", company.Name, "chunks", indexed)
	}
}

func indexFiling(ctx context.Context, edgar *fetcher.EdgarClient, searcher *retrieval.Searcher, splitter *fetcher.Splitter, filing fetcher.Filing) (int, error) {
	raw, err := edgar.Download(ctx, filing.CIK, filing.AccessionNumber, filing.PrimaryDocument)
	if err != nil {
		return 0, err
	}

	text, err := html2text.FromString(string(raw))
	if err != nil {
		return 0, err
	}

	var chunks []retrieval.Chunk
	i := 0
	for _, section := range fetcher.SplitSections(text) {
		for _, content := range splitter.SplitSectionText(section) {
			chunks = append(chunks, retrieval.Chunk{
				ID:      fmt.Sprintf("%v_chunk_%v", filing.PrimaryDocument, i),
				Content: content,
				Metadata: retrieval.ChunkMetadata{
					CIK:          filing.CIK,
					FilingDate:   filing.FilingDate,
					Form:         filing.Form,
					SectionTitle: section.Title,
					DocumentName: filing.PrimaryDocument,
					ChunkIndex:   i,
				},
			})
			i++
		}
	}

	return searcher.IndexChunks(ctx, chunks)
}
