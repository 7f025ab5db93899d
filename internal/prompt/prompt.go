// Package prompt renders the analysis prompt sent to the chat model.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// companyNames maps known tickers to display names. Unmapped tickers fall
// back to "the Company"; this is a label table, not ticker resolution.
var companyNames = map[string]string{
	"MSFT": "Microsoft",
}

const fallbackCompany = "the Company"

// Compose renders the analysis prompt for the given articles and focus
// ticker. Identical inputs produce byte-identical output.
func Compose(articles []domain.NewsArticle, focusTicker string) string {
	ticker := focusTicker
	if ticker == "" {
		ticker = "Unknown Company"
	}
	company := fallbackCompany
	if name, ok := companyNames[ticker]; ok {
		company = name
	}

	var b strings.Builder

	fmt.Fprintf(&b, "### Analysis Request for %s (%s)\n\n", ticker, company)
	fmt.Fprintf(&b, "Analyze the provided financial news data for actionable insights specific to the ticker **%s**. Focus on:\n\n", ticker)
	fmt.Fprintf(&b, "1. Summarizing %s-related news and their implications on the company's growth, sustainability, and market position.\n", ticker)
	fmt.Fprintf(&b, "2. Highlighting how broader industry trends and associated companies affect or are affected by %s.\n", ticker)
	b.WriteString("3. Providing specific, actionable investment strategies based on the analysis of the provided data.\n\n")
	b.WriteString("---\n\n### News Data:\n")

	for i, item := range articles {
		fmt.Fprintf(&b, "\n#### News Item %d:\n", i+1)
		fmt.Fprintf(&b, "- **Title**: %q\n", item.Title)
		fmt.Fprintf(&b, "- **URL**: [%s](%s)\n", item.URL, item.URL)
		fmt.Fprintf(&b, "- **Summary**: %s\n", item.Summary)
		fmt.Fprintf(&b, "- **Published Date**: %s\n", item.TimePublished)
		fmt.Fprintf(&b, "- **Authors**: %s\n", strings.Join(item.Authors, ", "))
		fmt.Fprintf(&b, "- **Source**: %s\n", item.Source)
		fmt.Fprintf(&b, "- **Topics**: %s\n", topicNames(item.Topics))
		fmt.Fprintf(&b, "- **Overall Sentiment**: %s (%s)\n", item.OverallSentimentLabel, formatScore(item.OverallSentimentScore))
		b.WriteString("- **Ticker Sentiment**:\n")
		writeTickerSentiment(&b, item.TickerSentiment, ticker)
	}

	b.WriteString("\n---\n\n### Instructions:\n")
	b.WriteString("1. **Extract Relevant Information**:\n")
	fmt.Fprintf(&b, "   - Focus only on news items mentioning **%s (%s)**, directly or indirectly.\n", ticker, company)
	fmt.Fprintf(&b, "2. **Analyze %s's Position**:\n", ticker)
	b.WriteString("   - Summarize challenges, opportunities, and growth indicators.\n")
	b.WriteString("   - Assess sentiment scores and interpret market reactions.\n")
	b.WriteString("3. **Industry and Competitor Insights**:\n")
	fmt.Fprintf(&b, "   - Highlight how industry trends (e.g., AI, technology, finance) and competitor news influence %s.\n", ticker)
	b.WriteString("4. **Actionable Investment Strategies**:\n")
	b.WriteString("   - Provide **short-term** and **long-term** strategies based on the analysis.\n\n")

	b.WriteString("---\n\n### Output Format:\n")
	fmt.Fprintf(&b, "#### 1. %s-Specific Insights:\n", ticker)
	fmt.Fprintf(&b, "- **Summary of News**: [Key points about %s]\n", ticker)
	fmt.Fprintf(&b, "- **Implications**: [How this affects %s's growth, challenges, or opportunities]\n\n", ticker)
	b.WriteString("#### 2. Sector-Wide Implications:\n")
	fmt.Fprintf(&b, "- **Key Trends**: [Trends in AI, technology, and finance impacting %s]\n\n", ticker)
	b.WriteString("#### 3. Actionable Investment Strategies:\n")
	b.WriteString("- **Short-Term Strategies**: [Strategies for immediate action]\n")
	b.WriteString("- **Long-Term Strategies**: [Strategies for long-term holding or monitoring]\n")

	return b.String()
}

func writeTickerSentiment(b *strings.Builder, entries []domain.TickerSentiment, ticker string) {
	found := false
	for _, ts := range entries {
		if ts.Ticker != ticker {
			continue
		}
		found = true
		fmt.Fprintf(b, "  - **Ticker**: %s\n", ts.Ticker)
		fmt.Fprintf(b, "    **Relevance Score**: %s\n", formatScore(ts.RelevanceScore))
		fmt.Fprintf(b, "    **Sentiment Score**: %s\n", formatScore(ts.SentimentScore))
		fmt.Fprintf(b, "    **Sentiment Label**: %s\n", ts.SentimentLabel)
	}
	if !found {
		b.WriteString("  - No specific sentiment data for this ticker.\n")
	}
}

func topicNames(topics []domain.Topic) string {
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Topic)
	}
	return strings.Join(names, ", ")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
