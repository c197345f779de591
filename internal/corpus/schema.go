package corpus

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// FieldError describes a single schema violation in one document's
// frontmatter. Error reports render it as "<field>: <message>".
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Frontmatter keys recognized by the schema. Unknown keys are ignored so that
// authors can carry renderer-specific metadata without breaking the build.
const (
	fieldTitle         = "title"
	fieldPhase         = "phase"
	fieldTopic         = "topic"
	fieldDepth         = "depth"
	fieldType          = "type"
	fieldDomain        = "domain"
	fieldIndustry      = "industry"
	fieldUpdated       = "updated"
	fieldKeywords      = "keywords"
	fieldReadingTime   = "reading_time"
	fieldPrerequisites = "prerequisites"
	fieldRelatedTopics = "related_topics"
	fieldPersonas      = "personas"
)

// Validate checks an untyped frontmatter mapping against the document schema.
// It is total: it never panics on malformed input and it accumulates every
// violation instead of stopping at the first, so one build pass reports all
// problems in a document. The returned Document is only meaningful when the
// error slice is empty.
func Validate(fm map[string]any) (Document, []FieldError) {
	var (
		doc  Document
		errs []FieldError
	)

	doc.Title = requireString(fm, fieldTitle, &errs)
	doc.Phase = requireString(fm, fieldPhase, &errs)
	doc.Topic = requireString(fm, fieldTopic, &errs)

	doc.Depth = validateDepth(fm, &errs)

	doc.Type = optionalString(fm, fieldType, &errs)
	doc.Domain = optionalString(fm, fieldDomain, &errs)
	doc.Industry = optionalString(fm, fieldIndustry, &errs)
	doc.Updated = optionalString(fm, fieldUpdated, &errs)

	doc.ReadingTime = validateReadingTime(fm, &errs)

	doc.Keywords = stringList(fm, fieldKeywords, &errs)
	doc.Prerequisites = stringList(fm, fieldPrerequisites, &errs)
	doc.RelatedTopics = stringList(fm, fieldRelatedTopics, &errs)
	doc.Personas = stringList(fm, fieldPersonas, &errs)

	// Stable order regardless of map iteration.
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Field != errs[j].Field {
			return fieldRank(errs[i].Field) < fieldRank(errs[j].Field)
		}

		return errs[i].Message < errs[j].Message
	})

	return doc, errs
}

// fieldOrder fixes the reporting order of schema errors to the declaration
// order of the schema, not map iteration order.
//
//nolint:gochecknoglobals // package-level constant
var fieldOrder = []string{
	fieldTitle, fieldPhase, fieldTopic, fieldDepth, fieldType, fieldDomain,
	fieldIndustry, fieldUpdated, fieldKeywords, fieldReadingTime,
	fieldPrerequisites, fieldRelatedTopics, fieldPersonas,
}

func fieldRank(field string) int {
	for idx, name := range fieldOrder {
		if field == name || strings.HasPrefix(field, name) {
			return idx
		}
	}

	return len(fieldOrder)
}

func requireString(fm map[string]any, key string, errs *[]FieldError) string {
	raw, ok := fm[key]
	if !ok {
		*errs = append(*errs, FieldError{Field: key, Message: "required field missing"})

		return ""
	}

	str, ok := raw.(string)
	if !ok {
		*errs = append(*errs, FieldError{Field: key, Message: "must be a string, got " + typeName(raw)})

		return ""
	}

	if strings.TrimSpace(str) == "" {
		*errs = append(*errs, FieldError{Field: key, Message: "must not be empty"})

		return ""
	}

	return str
}

func optionalString(fm map[string]any, key string, errs *[]FieldError) string {
	raw, ok := fm[key]
	if !ok {
		return ""
	}

	str, ok := raw.(string)
	if !ok {
		*errs = append(*errs, FieldError{Field: key, Message: "must be a string, got " + typeName(raw)})

		return ""
	}

	return str
}

func validateDepth(fm map[string]any, errs *[]FieldError) Depth {
	raw, ok := fm[fieldDepth]
	if !ok {
		return ""
	}

	str, ok := raw.(string)
	if !ok {
		*errs = append(*errs, FieldError{
			Field:   fieldDepth,
			Message: "must be a string, got " + typeName(raw),
		})

		return ""
	}

	if !IsValidDepth(str) {
		*errs = append(*errs, FieldError{
			Field:   fieldDepth,
			Message: fmt.Sprintf("must be one of %q, %q, %q, got %q", DepthSurface, DepthMid, DepthDeep, str),
		})

		return ""
	}

	return Depth(str)
}

func validateReadingTime(fm map[string]any, errs *[]FieldError) int {
	raw, ok := fm[fieldReadingTime]
	if !ok {
		return 0
	}

	minutes, ok := asInt(raw)
	if !ok {
		*errs = append(*errs, FieldError{
			Field:   fieldReadingTime,
			Message: "must be a number of minutes, got " + typeName(raw),
		})

		return 0
	}

	if minutes < 0 {
		*errs = append(*errs, FieldError{
			Field:   fieldReadingTime,
			Message: fmt.Sprintf("must not be negative, got %d", minutes),
		})

		return 0
	}

	return minutes
}

func stringList(fm map[string]any, key string, errs *[]FieldError) []string {
	raw, ok := fm[key]
	if !ok {
		return []string{}
	}

	list, ok := raw.([]any)
	if !ok {
		*errs = append(*errs, FieldError{Field: key, Message: "must be a list of strings, got " + typeName(raw)})

		return []string{}
	}

	out := make([]string, 0, len(list))

	for idx, item := range list {
		str, ok := item.(string)
		if !ok {
			*errs = append(*errs, FieldError{
				Field:   key,
				Message: fmt.Sprintf("element %d must be a string, got %s", idx, typeName(item)),
			})

			continue
		}

		if strings.TrimSpace(str) == "" {
			*errs = append(*errs, FieldError{
				Field:   key,
				Message: fmt.Sprintf("element %d must not be empty", idx),
			})

			continue
		}

		out = append(out, str)
	}

	return out
}

// asInt accepts the numeric shapes the YAML decoder produces. Floats must be
// whole numbers.
func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}

		return int(v), true
	default:
		return 0, false
	}
}

// typeName renders a decoded YAML value's type in author-facing terms.
func typeName(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
