// Package validator checks word-cloud service request bodies and returns
// per-field error details.
package validator

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxTermLength   = 256
	maxExclusions   = 1000
	fieldParagraph  = "paragraph"
	fieldWord       = "word"
	fieldSearch     = "search"
	fieldExclusions = "exclude"
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

// Validator carries the configured paragraph limit.
type Validator struct {
	MaxParagraphBytes int
}

// Paragraph checks the paragraph size. Empty paragraphs are valid and yield
// empty results.
func (v Validator) Paragraph(paragraph string) error {
	errs := make(map[string]string)
	v.checkParagraph(errs, paragraph)
	return result(errs)
}

// WordCount checks a word-count request. A blank word is valid and counts
// zero.
func (v Validator) WordCount(paragraph, word string) error {
	errs := make(map[string]string)
	v.checkParagraph(errs, paragraph)
	if len(word) > maxTermLength {
		errs[fieldWord] = fmt.Sprintf("word must be at most %d characters", maxTermLength)
	}
	return result(errs)
}

// Analyze checks an analyze/export request.
func (v Validator) Analyze(paragraph, search string, exclusions []string) error {
	errs := make(map[string]string)
	v.checkParagraph(errs, paragraph)
	if len(search) > maxTermLength {
		errs[fieldSearch] = fmt.Sprintf("search must be at most %d characters", maxTermLength)
	}
	if len(exclusions) > maxExclusions {
		errs[fieldExclusions] = fmt.Sprintf("at most %d exclusions allowed", maxExclusions)
	}
	return result(errs)
}

func (v Validator) checkParagraph(errs map[string]string, paragraph string) {
	if v.MaxParagraphBytes > 0 && len(paragraph) > v.MaxParagraphBytes {
		errs[fieldParagraph] = fmt.Sprintf("paragraph must be at most %d bytes", v.MaxParagraphBytes)
	}
}

func result(errs map[string]string) error {
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
