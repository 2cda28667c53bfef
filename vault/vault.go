// ABOUTME: Loads person records from a directory of markdown notes with YAML frontmatter.
// ABOUTME: Reconciles legacy field spellings into canonical ids and falls back to the first heading for names.
package vault

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/treeline-tools/treeline/family"
)

// Load walks dir for .md notes and returns one person record per note
// that carries frontmatter. Notes without frontmatter are skipped.
// Results are sorted by record id so repeated loads are deterministic.
func Load(dir string) ([]family.PersonRecord, error) {
	var records []family.PersonRecord

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read note %s: %w", path, err)
		}

		rec, ok, err := parseNote(path, data)
		if err != nil {
			return fmt.Errorf("note %s: %w", path, err)
		}
		if ok {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load vault %s: %w", dir, err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// parseNote extracts a record from one note. ok is false when the note
// has no frontmatter block.
func parseNote(path string, data []byte) (family.PersonRecord, bool, error) {
	front, body, ok := splitFrontmatter(data)
	if !ok {
		return family.PersonRecord{}, false, nil
	}

	var meta map[string]any
	if err := yaml.Unmarshal(front, &meta); err != nil {
		return family.PersonRecord{}, false, fmt.Errorf("frontmatter: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".md")

	rec := family.PersonRecord{
		ID:        stringField(meta, "id", "person_id"),
		Name:      stringField(meta, "name", "full_name"),
		BirthDate: stringField(meta, "born", "birth", "birth_date", "birthDate"),
		DeathDate: stringField(meta, "died", "death", "death_date", "deathDate"),
		Sex:       stringField(meta, "sex", "gender"),
		FatherID:  stringField(meta, "father", "father_id", "fatherId"),
		MotherID:  stringField(meta, "mother", "mother_id", "motherId"),
	}
	rec.SpouseIDs = listField(meta, "spouse", "spouses", "spouse_id", "spouseIds")
	rec.ChildrenIDs = listField(meta, "children", "child", "childIds")

	if rec.ID == "" {
		rec.ID = stem
	}
	if rec.Name == "" {
		rec.Name = firstHeading(body)
	}
	if rec.Name == "" {
		rec.Name = stem
	}

	return rec, true, nil
}

// splitFrontmatter cuts a leading YAML block delimited by --- lines.
func splitFrontmatter(data []byte) (front, body []byte, ok bool) {
	const fence = "---"

	rest, found := bytes.CutPrefix(data, []byte(fence+"\n"))
	if !found {
		rest, found = bytes.CutPrefix(data, []byte(fence+"\r\n"))
		if !found {
			return nil, data, false
		}
	}

	idx := bytes.Index(rest, []byte("\n"+fence))
	if idx < 0 {
		return nil, data, false
	}
	front = rest[:idx]
	body = rest[idx+len("\n"+fence):]
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	return front, body, true
}

// stringField returns the first present key rendered as a string.
// Scalars of other YAML types (years as ints) are formatted, not
// rejected.
func stringField(meta map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := meta[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case int, int64, float64, bool:
			return fmt.Sprintf("%v", s)
		}
	}
	return ""
}

// listField accepts both a scalar and a sequence for any of the keys,
// so legacy single-value spellings load alongside list spellings.
func listField(meta map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, ok := meta[k]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return []string{val}
			}
		case []any:
			var out []string
			for _, item := range val {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				} else if item != nil {
					out = append(out, fmt.Sprintf("%v", item))
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// firstHeading returns the text of the first top-level markdown heading.
func firstHeading(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(body))

	var title string
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if h, ok := n.(*gast.Heading); ok && h.Level == 1 {
			title = string(h.Text(body))
			return gast.WalkStop, nil
		}
		return gast.WalkContinue, nil
	})
	return strings.TrimSpace(title)
}
