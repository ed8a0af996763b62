package torg12

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/torg12/internal/normalize"
)

// textSet is a set of header-normalized strings.
type textSet map[string]struct{}

func newTextSet(items []string) textSet {
	set := make(textSet, len(items))
	for _, s := range items {
		set[normalize.Header(s)] = struct{}{}
	}
	return set
}

func (s textSet) has(text string) bool {
	_, ok := s[text]
	return ok
}

type compiledLabel struct {
	attr   string
	labels []string
	// split holds the two-word labels that may be printed across two rows.
	split  [][2]string
	offset int
}

type compiledMatcher struct {
	attr     Attribute
	synonyms textSet
	pattern  *regexp.Regexp
	// accepted is used in error messages.
	accepted []string
}

func (m *compiledMatcher) matches(text string) bool {
	if m.pattern != nil {
		return m.pattern.MatchString(text)
	}
	return m.synonyms.has(text)
}

// vocabulary is the compiled, read-only form of Vocabulary shared by all
// parses of one Parser.
type vocabulary struct {
	number   compiledLabel
	date     compiledLabel
	columns  []*compiledMatcher
	byAttr   map[Attribute]*compiledMatcher
	cntExcl  textSet
	footer   textSet
	noTax    []string
	decoyNum textSet
	decoyCod textSet
}

func compileVocabulary(v Vocabulary) (*vocabulary, error) {
	cv := &vocabulary{
		number:  compileLabel(CodeInvoiceNumber, v.DocumentNumber),
		date:    compileLabel(CodeInvoiceDate, v.DocumentDate),
		byAttr:  make(map[Attribute]*compiledMatcher),
		cntExcl: newTextSet(v.CntExclusion),
		footer:  newTextSet(v.Footer),
	}
	for _, token := range v.NoTaxTokens {
		cv.noTax = append(cv.noTax, normalize.Header(token))
	}

	for _, c := range v.Columns {
		if _, dup := cv.byAttr[c.Attribute]; dup {
			return nil, fmt.Errorf("attribute %q has more than one matcher", c.Attribute)
		}
		m := &compiledMatcher{attr: c.Attribute}
		if c.Pattern != "" {
			re, err := regexp.Compile("(?is)" + c.Pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern for %q: %w", c.Attribute, err)
			}
			m.pattern = re
			m.accepted = []string{c.Pattern}
		} else {
			m.synonyms = newTextSet(c.Synonyms)
			m.accepted = c.Synonyms
		}
		cv.columns = append(cv.columns, m)
		cv.byAttr[c.Attribute] = m
	}

	for _, group := range requiredColumns {
		found := false
		for _, attr := range group {
			_, ok := cv.byAttr[attr]
			found = found || ok
		}
		if !found {
			return nil, fmt.Errorf("vocabulary has no matcher for required attribute %s", joinAttrs(group))
		}
	}
	cv.decoyNum = cv.byAttr[AttrNum].synonyms
	cv.decoyCod = cv.byAttr[AttrCode].synonyms
	return cv, nil
}

func compileLabel(attr string, l HeaderLabel) compiledLabel {
	cl := compiledLabel{attr: attr, offset: l.ValueOffset}
	for _, label := range l.Labels {
		text := normalize.Header(label)
		cl.labels = append(cl.labels, text)
		if words := strings.Fields(text); len(words) == 2 {
			cl.split = append(cl.split, [2]string{words[0], words[1]})
		}
	}
	return cl
}

// accepted returns the header texts for one or more attributes, for messages.
func (v *vocabulary) accepted(attrs ...Attribute) []string {
	var out []string
	for _, attr := range attrs {
		if m, ok := v.byAttr[attr]; ok {
			out = append(out, m.accepted...)
		}
	}
	return out
}
