package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrMalformedJSONLD is returned when a structured-data block stays
// invalid after the trailing-comma repair.
var ErrMalformedJSONLD = errors.New("malformed JSON-LD block")

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
	messageFragment     = regexp.MustCompile(`#M(\d+)`)
)

// repairTrailingCommas drops commas directly before a closing brace or
// bracket, the one defect the platform's templates are known to emit.
func repairTrailingCommas(raw string) string {
	fixed := trailingCommaObject.ReplaceAllString(raw, "}")
	return trailingCommaArray.ReplaceAllString(fixed, "]")
}

// decodeJSONLD parses raw as JSON, retrying once after repair.
func decodeJSONLD(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, nil
	}
	if err := json.Unmarshal([]byte(repairTrailingCommas(raw)), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSONLD, err)
	}
	return v, nil
}

// jsonLDBlocks decodes every ld+json script on the page, skipping blocks
// that cannot be decoded.
func (e *Extractor) jsonLDBlocks(doc *goquery.Document) []any {
	var blocks []any
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		v, err := decodeJSONLD(raw)
		if err != nil {
			e.log.Debug("skipping structured data block", zap.Int("index", i), zap.Error(err))
			return
		}
		blocks = append(blocks, v)
	})
	return blocks
}

// graphNodes flattens a block into the objects it declares: the members
// of @graph when present, each element of a top-level array, or the block
// itself.
func graphNodes(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var out []map[string]any
		for _, item := range t {
			out = append(out, graphNodes(item)...)
		}
		return out
	case map[string]any:
		graph, ok := t["@graph"].([]any)
		if !ok {
			return []map[string]any{t}
		}
		var out []map[string]any
		for _, item := range graph {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// acceptedIDs collects the message ids referenced by QAPage
// acceptedAnswer entries.
func acceptedIDs(blocks []any) map[string]bool {
	ids := make(map[string]bool)
	for _, block := range blocks {
		for _, node := range graphNodes(block) {
			if !isQAPage(node) {
				continue
			}
			main := firstObject(node["mainEntity"])
			if main == nil {
				continue
			}
			for _, answer := range objects(main["acceptedAnswer"]) {
				if m := messageFragment.FindStringSubmatch(answerURL(answer)); m != nil {
					ids[m[1]] = true
				}
			}
		}
	}
	return ids
}

func isQAPage(node map[string]any) bool {
	types := node["@type"]
	if types == nil {
		types = node["type"]
	}
	for _, t := range stringList(types) {
		if strings.EqualFold(t, "QAPage") {
			return true
		}
	}
	return false
}

func answerURL(answer map[string]any) string {
	for _, key := range []string{"url", "mainEntityOfPage"} {
		switch v := answer[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if id, ok := v["@id"].(string); ok && id != "" {
				return id
			}
		}
	}
	return ""
}

// objects normalizes a value that may be one object or a list of them.
func objects(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		var out []map[string]any
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func firstObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		if len(t) > 0 {
			m, _ := t[0].(map[string]any)
			return m
		}
	}
	return nil
}

// stringList normalizes a string-or-list JSON value.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
