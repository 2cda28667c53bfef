// ABOUTME: Line-level GEDCOM parser producing person records from INDI and FAM structures.
// ABOUTME: Resolves family cross-references into father/mother/spouse/children links; unknown tags are skipped.
package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/treeline-tools/treeline/family"
)

// familyRecord accumulates one FAM structure before resolution.
type familyRecord struct {
	husband  string
	wife     string
	children []string
}

// ParseFile reads a GEDCOM file from disk.
func ParseFile(path string) ([]family.PersonRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gedcom file: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// Parse reads GEDCOM lines (LEVEL [@XREF@] TAG [VALUE]) and returns the
// individuals with family links resolved. Cross-reference ids like
// @I1@ become opaque record ids (I1). Tags outside the supported
// subset are skipped, not rejected.
func Parse(r io.Reader) ([]family.PersonRecord, error) {
	p := &parser{
		persons: map[string]*family.PersonRecord{},
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := p.consume(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gedcom: %w", err)
	}

	p.resolveFamilies()

	records := make([]family.PersonRecord, 0, len(p.order))
	for _, id := range p.order {
		records = append(records, *p.persons[id])
	}
	return records, nil
}

type parser struct {
	persons  map[string]*family.PersonRecord
	order    []string
	families []*familyRecord

	current *family.PersonRecord // INDI being filled, nil otherwise
	fam     *familyRecord        // FAM being filled, nil otherwise
	event   string               // BIRT or DEAT sub-context for DATE lines
}

func (p *parser) consume(line string) error {
	levelStr, rest, _ := strings.Cut(line, " ")
	level, err := strconv.Atoi(levelStr)
	if err != nil {
		return fmt.Errorf("malformed level %q", levelStr)
	}

	var xref, tag, value string
	if strings.HasPrefix(rest, "@") {
		xref, rest, _ = strings.Cut(rest, " ")
	}
	tag, value, _ = strings.Cut(rest, " ")

	if level == 0 {
		p.current = nil
		p.fam = nil
		p.event = ""

		switch tag {
		case "INDI":
			id := trimXref(xref)
			if id == "" {
				return fmt.Errorf("INDI record without xref")
			}
			p.current = &family.PersonRecord{ID: id}
			p.persons[id] = p.current
			p.order = append(p.order, id)
		case "FAM":
			p.fam = &familyRecord{}
			p.families = append(p.families, p.fam)
		}
		return nil
	}

	if level == 1 {
		p.event = ""
	}

	switch {
	case p.current != nil:
		p.consumeIndividual(level, tag, value)
	case p.fam != nil:
		p.consumeFamily(tag, value)
	}
	return nil
}

func (p *parser) consumeIndividual(level int, tag, value string) {
	switch {
	case level == 1 && tag == "NAME":
		if p.current.Name == "" {
			p.current.Name = cleanName(value)
		}
	case level == 1 && tag == "SEX":
		p.current.Sex = value
	case level == 1 && (tag == "BIRT" || tag == "DEAT"):
		p.event = tag
	case level == 2 && tag == "DATE":
		switch p.event {
		case "BIRT":
			p.current.BirthDate = value
		case "DEAT":
			p.current.DeathDate = value
		}
	}
}

func (p *parser) consumeFamily(tag, value string) {
	switch tag {
	case "HUSB":
		p.fam.husband = trimXref(value)
	case "WIFE":
		p.fam.wife = trimXref(value)
	case "CHIL":
		p.fam.children = append(p.fam.children, trimXref(value))
	}
}

// resolveFamilies turns FAM structures into reciprocal person links.
// References to individuals absent from the file are preserved on the
// side that exists and silently unresolvable on the other.
func (p *parser) resolveFamilies() {
	for _, fam := range p.families {
		husband := p.persons[fam.husband]
		wife := p.persons[fam.wife]

		if fam.husband != "" && fam.wife != "" {
			if husband != nil {
				husband.AddSpouse(fam.wife)
			}
			if wife != nil {
				wife.AddSpouse(fam.husband)
			}
		}

		for _, childID := range fam.children {
			child := p.persons[childID]
			if child != nil {
				if fam.husband != "" {
					child.FatherID = fam.husband
				}
				if fam.wife != "" {
					child.MotherID = fam.wife
				}
			}
			if husband != nil {
				husband.AddChild(childID)
			}
			if wife != nil {
				wife.AddChild(childID)
			}
		}
	}
}

func trimXref(s string) string {
	return strings.Trim(s, "@")
}

// cleanName strips the GEDCOM slash-surname convention:
// "John /Smith/" becomes "John Smith".
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "/", "")
	return strings.Join(strings.Fields(name), " ")
}
