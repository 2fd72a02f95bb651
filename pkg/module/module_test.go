package module_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockkit/pkg/module"
)

func TestParseSubFields(t *testing.T) {
	text := "item_title|Item Title|text\n\n  item_content | Item Content | wysiwyg \nlink\nicon||image\n|Orphan|text\n"
	got := module.ParseSubFields(text)
	want := []module.FieldSpec{
		{Name: "item_title", Label: "Item Title", Type: module.FieldTypeText},
		{Name: "item_content", Label: "Item Content", Type: module.FieldTypeWYSIWYG},
		{Name: "link", Label: "Link", Type: module.FieldTypeText},
		{Name: "icon", Label: "Icon", Type: module.FieldTypeImage},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sub-fields mismatch (-want +got):\n%s", diff)
	}

	if round := module.ParseSubFields(module.FormatSubFields(got)); !cmp.Equal(round, got) {
		t.Fatalf("format/parse round trip mismatch: %#v", round)
	}
}

func TestParseSubFieldsEmpty(t *testing.T) {
	if got := module.ParseSubFields("  \n\t\n"); got != nil {
		t.Fatalf("expected nil for blank input, got %#v", got)
	}
}

func TestValidName(t *testing.T) {
	cases := map[string]bool{
		"title":     true,
		"_private":  true,
		"Item2":     true,
		"2items":    false,
		"item-name": false,
		"":          false,
		"a b":       false,
	}
	for name, want := range cases {
		if got := module.ValidName(name); got != want {
			t.Fatalf("ValidName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hero Banner":         "hero-banner",
		"  Call to Action! ":  "call-to-action",
		"FAQ__List--v2":       "faq-list-v2",
		"Café Menu":           "caf-menu",
		"":                    "",
	}
	for in, want := range cases {
		if got := module.Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	def := module.Definition{
		ID: "broken",
		Fields: []module.FieldSpec{
			{Name: "title", Type: module.FieldTypeText},
			{Name: "title", Type: module.FieldTypeText},
			{Name: "bad-name", Type: module.FieldTypeText},
			{Name: "color", Type: "colour_picker"},
			{Name: "caption", Type: module.FieldTypeText, SubFields: []module.FieldSpec{{Name: "x"}}},
			{Name: "items", Type: module.FieldTypeRepeater, SubFields: []module.FieldSpec{
				{Name: "inner", Type: module.FieldTypeRepeater},
				{Name: "9lives", Type: module.FieldTypeText},
			}},
		},
	}

	err := module.Validate(def)
	if err == nil {
		t.Fatalf("expected validation errors")
	}

	msg := err.Error()
	for _, fragment := range []string{
		"title: duplicate field name",
		`bad-name: invalid name "bad-name"`,
		`color: unknown field type "colour_picker"`,
		"caption: sub-fields are only allowed on repeaters",
		"items.inner: repeaters cannot be nested",
		`items.9lives: invalid name "9lives"`,
	} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in validation output:\n%s", fragment, msg)
		}
	}

	var vErr *module.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError in joined error")
	}
}

func TestValidateAcceptsSoundDefinition(t *testing.T) {
	def := module.Definition{
		ID:    "faq",
		Label: "FAQ",
		Fields: []module.FieldSpec{
			{Name: "heading", Type: module.FieldTypeText},
			{Name: "entries", Type: module.FieldTypeRepeater, SubFields: []module.FieldSpec{
				{Name: "question"},
				{Name: "answer", Type: module.FieldTypeWYSIWYG},
			}},
		},
	}
	if err := module.Validate(def); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestDecodeStoredShape(t *testing.T) {
	raw := map[string]any{
		"id":                  "cards",
		"module_label":        "Card Grid",
		"module_compact_code": "1",
		"module_status":       0,
		"module_html":         "<div>{{title}}</div>",
		"module_fields": []any{
			map[string]any{"field_name": "title", "field_label": "Title", "field_type": "text", "field_required": "1"},
			map[string]any{"field_name": "count", "field_type": "text", "field_default": 3},
			map[string]any{
				"field_name":       "cards",
				"field_type":       "repeater",
				"field_sub_fields": "card_title|Card Title|text\ncard_body|Card Body|wysiwyg",
			},
		},
	}

	def, err := module.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := module.Definition{
		ID:           "cards",
		Label:        "Card Grid",
		HTMLTemplate: "<div>{{title}}</div>",
		Compact:      true,
		Active:       false,
		Fields: []module.FieldSpec{
			{Name: "title", Label: "Title", Type: module.FieldTypeText, Required: true},
			{Name: "count", Type: module.FieldTypeText, Default: "3"},
			{Name: "cards", Type: module.FieldTypeRepeater, SubFields: []module.FieldSpec{
				{Name: "card_title", Label: "Card Title", Type: module.FieldTypeText},
				{Name: "card_body", Label: "Card Body", Type: module.FieldTypeWYSIWYG},
			}},
		},
	}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("decoded definition mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDefaultsActive(t *testing.T) {
	def, err := module.Decode(map[string]any{"label": "Plain"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !def.Active {
		t.Fatalf("expected Active to default to true")
	}

	withDefaults := def.WithDefaults()
	if withDefaults.Category != module.DefaultCategory || withDefaults.Icon != module.DefaultIcon {
		t.Fatalf("defaults not applied: %#v", withDefaults)
	}
	if withDefaults.Slug != "plain" {
		t.Fatalf("slug = %q, want plain", withDefaults.Slug)
	}
}
