package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/threadpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threadPage = `<html><head><title>Leave balance missing</title>
<meta property="article:published_time" content="2024-02-01T08:00:00Z"></head><body>
<div class="lia-message-view-qanda-question" data-lia-message-uid="5">
  <div class="lia-message-body-content"><p>Where did it go?</p></div>
</div>
<div class="lia-message-view" data-lia-message-uid="6">
  <div class="lia-message-body-content"><p>Check the time account.</p></div>
</div>
</body></html>`

func TestLoadConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threadpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sitemaps: [https://community.example.com/sitemap_qna.xml]
limit: 25
retries: 5
output:
  markdown: digest.md
`), 0o644))

	require.NoError(t, scrapeCmd.Flags().Parse([]string{
		"--config", path,
		"--limit", "7",
		"--out-json", "",
		"--concurrency", "4",
	}))

	cfg, err := loadConfig(scrapeCmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://community.example.com/sitemap_qna.xml"}, cfg.Sitemaps)
	assert.Equal(t, 7, cfg.Limit)
	assert.Equal(t, 5, cfg.Retries, "file value survives unset flags")
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "sap_pages.jsonl", cfg.Output.JSONL)
	assert.Empty(t, cfg.Output.JSON)
	assert.Equal(t, "digest.md", cfg.Output.Markdown)
}

func TestExtractCommand(t *testing.T) {
	page := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(page, []byte(threadPage), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	rootCmd.SetArgs([]string{
		"extract", page,
		"--url", "https://community.example.com/t5/hcm-q-a/leave/qaq-p/5",
		"--lastmod", "2024-03-01",
	})
	require.NoError(t, rootCmd.Execute())

	var item core.ContentItem
	require.NoError(t, json.Unmarshal(out.Bytes(), &item))
	assert.Equal(t, core.ContentQnA, item.ContentType)
	assert.Equal(t, "Leave balance missing", item.Title)
	assert.Equal(t, "2024-03-01", item.LastmodFromSitemap)
	assert.Equal(t, "Where did it go?", item.QuestionText)
	require.Len(t, item.Answers, 1)
	assert.Equal(t, "6", item.Answers[0].MessageID)
	assert.Equal(t, "https://community.example.com/t5/hcm-q-a/leave/qaq-p/5#M6", item.Answers[0].MessageURL)
	assert.Equal(t, "Check the time account.", item.Answers[0].Text)
}
