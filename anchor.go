package highlight

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Anchor is the durable description of a highlight (§3, §6): enough
// information to re-locate a previously-selected range in a possibly-changed
// document. The JSON form is deliberately flat for backward compatibility,
// even though v1 and v2 data are conceptually a tagged variant (§9):
// Position = V1{...} | V2{V1 fields + path/offset/fingerprint}.
//
// Equality is intentionally NOT defined as deep field comparison for set/map
// use: two Anchor values with the same ID are considered the same anchor
// regardless of their other fields (§9). Use SameAnchor for that comparison;
// reflect.DeepEqual (what require.Equal uses in tests) still compares every
// field, which is what the round-trip property in §8 requires.
type Anchor struct {
	ID            string    `json:"id" validate:"required"`
	ArticleID     string    `json:"article_id" validate:"required"`
	StartOffset   int       `json:"start_offset"`
	EndOffset     int       `json:"end_offset"`
	ExactText     string    `json:"exact_text" validate:"required"`
	PrefixContext string    `json:"prefix_context"`
	SuffixContext string    `json:"suffix_context"`
	NoteContent   *string   `json:"note_content"`
	Color         string    `json:"color" validate:"required"`
	CreatedAt     time.Time `json:"created_at" validate:"required"`
	UpdatedAt     time.Time `json:"updated_at" validate:"required"`

	// v2 fields: present together or not at all (see HasV2Data).
	StartNodePath   *string `json:"start_node_path"`
	StartNodeOffset *int    `json:"start_node_offset"`
	EndNodePath     *string `json:"end_node_path"`
	EndNodeOffset   *int    `json:"end_node_offset"`
	TextFingerprint *string `json:"text_fingerprint"`

	SchemaVersion int `json:"schema_version"`
}

// HasV2Data reports whether all four v2 path/offset fields are present.
func (a Anchor) HasV2Data() bool {
	return a.StartNodePath != nil && a.StartNodeOffset != nil &&
		a.EndNodePath != nil && a.EndNodeOffset != nil
}

// Length returns end_offset - start_offset.
func (a Anchor) Length() int { return a.EndOffset - a.StartOffset }

// SameAnchor implements the deliberate id-only equality described in §9,
// for callers that dedupe or index anchors by identity rather than content.
func SameAnchor(a, b Anchor) bool { return a.ID == b.ID }

var anchorValidate *validator.Validate

func init() {
	anchorValidate = validator.New()
	anchorValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// DecodeAnchor unmarshals and validates a single anchor from its flat JSON
// form. Unlike resolution failures (reported as orphans), a malformed anchor
// is a caller-visible error naming the offending field (§7). Input that is
// not valid JSON at all reports an empty Field.
func DecodeAnchor(data []byte) (Anchor, error) {
	var a Anchor
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&a); err != nil {
		if terr, ok := err.(*json.UnmarshalTypeError); ok {
			return Anchor{}, &AnchorFieldError{Field: terr.Field, Reason: terr.Error()}
		}
		field := ""
		var raw map[string]json.RawMessage
		if json.Unmarshal(data, &raw) == nil {
			for _, name := range []string{"created_at", "updated_at"} {
				var ts time.Time
				if v, ok := raw[name]; ok && json.Unmarshal(v, &ts) != nil {
					field = name
					break
				}
			}
		}
		return Anchor{}, &AnchorFieldError{Field: field, Reason: err.Error()}
	}
	if a.SchemaVersion == 0 {
		a.SchemaVersion = 1
	}
	if err := anchorValidate.Struct(a); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return Anchor{}, &AnchorFieldError{Field: fe.Field(), Reason: fe.Tag()}
		}
		return Anchor{}, &AnchorFieldError{Field: "", Reason: err.Error()}
	}
	return a, nil
}

// EncodeAnchor serializes an anchor back to its flat JSON form.
func EncodeAnchor(a Anchor) ([]byte, error) {
	return json.Marshal(a)
}
