package vanilla

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func renderMixed(t *testing.T, options ...Option) (*Surface, *render.FormRenderer, schema.Schema) {
	t.Helper()
	surf := New(options...)
	renderer, err := render.New(surf)
	require.NoError(t, err)
	sch := testsupport.MustSchema(t, testsupport.MixedSchema)
	_, err = renderer.RenderForm(sch)
	require.NoError(t, err)
	return surf, renderer, sch
}

func TestHTMLRendersEveryControl(t *testing.T) {
	surf, _, _ := renderMixed(t)
	out := surf.HTML()

	for _, want := range []string{
		`<input id="fld_full_name" name="fld_full_name" class="formflow-control" type="text"`,
		`type="email"`,
		`<select id="fld_plan" name="fld_plan"`,
		`<option value="" selected>Select...</option>`,
		`<option value="pro">pro</option>`,
		`<fieldset class="formflow-fieldset" id="fld_size">`,
		`name="fld_size" type="radio" value="S"`,
		`type="checkbox"`,
		`<textarea id="fld_notes"`,
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "fld_full_name"), strings.Index(out, "fld_notes"), "controls keep schema order")
}

func TestHTMLEscapesSchemaText(t *testing.T) {
	surf := New()
	renderer, err := render.New(surf)
	require.NoError(t, err)
	sch := testsupport.MustSchema(t, `{"title":"<b>x</b>","fields":[
		{"name":"q","label":"<script>alert(1)</script>","type":"select","options":["a\"b","<i>"]}
	]}`)
	_, err = renderer.RenderForm(sch)
	require.NoError(t, err)

	out := surf.HTML()
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<i>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, out, `value="a&#34;b"`)
}

func TestBindCollectsPostedValues(t *testing.T) {
	surf, renderer, sch := renderMixed(t)

	err := surf.Bind(url.Values{
		"fld_full_name": {"Ada <Lovelace>"},
		"fld_email":     {"ada@example.com"},
		"fld_age":       {"36"},
		"fld_plan":      {"pro"},
		"fld_size":      {"M"},
		"fld_agree":     {"on"},
		"fld_notes":     {"line one\nline two"},
	})
	require.NoError(t, err)

	got := renderer.Collect(sch)
	assert.Equal(t, schema.Submission{
		"full_name": "Ada <Lovelace>",
		"email":     "ada@example.com",
		"age":       "36",
		"plan":      "pro",
		"size":      "M",
		"agree":     true,
		"notes":     "line one\nline two",
	}, got)

	out := surf.HTML()
	assert.Contains(t, out, `value="Ada &lt;Lovelace&gt;"`)
	assert.Contains(t, out, `<option value="pro" selected>pro</option>`)
	assert.Contains(t, out, `value="M" checked`)
}

func TestBindFallsBackForMissingAndUnknownValues(t *testing.T) {
	surf, renderer, sch := renderMixed(t)
	require.NoError(t, surf.Bind(url.Values{"fld_plan": {"pro"}, "fld_size": {"M"}, "fld_agree": {"on"}}))

	require.NoError(t, surf.Bind(url.Values{"fld_plan": {"enterprise"}, "fld_size": {"XL"}}))

	got := renderer.Collect(sch)
	assert.Equal(t, "", got["plan"])
	assert.Equal(t, false, got["agree"])
	assert.Equal(t, "M", got["size"], "unknown radio values keep the current choice")
}

func TestRadioNextToSuffixedFieldName(t *testing.T) {
	surf := New()
	renderer, err := render.New(surf)
	require.NoError(t, err)
	sch := testsupport.MustSchema(t, `{"fields":[
		{"name":"plan","type":"radio","options":["A","B"]},
		{"name":"plan_0","type":"text"}
	]}`)
	_, err = renderer.RenderForm(sch)
	require.NoError(t, err)

	require.NoError(t, surf.Bind(url.Values{"fld_plan": {"B"}, "fld_plan_0": {"hello"}}))
	assert.Equal(t, schema.Submission{"plan": "B", "plan_0": "hello"}, renderer.Collect(sch))

	out := surf.HTML()
	assert.Equal(t, 1, strings.Count(out, `id="fld_plan_0"`))
	assert.Contains(t, out, `value="hello"`)
}

func TestWithClassesOverridesChrome(t *testing.T) {
	surf, _, _ := renderMixed(t, WithClasses(Classes{Control: "input", Form: "stack"}))
	out := surf.HTML()

	assert.Contains(t, out, `class="input"`)
	assert.Contains(t, out, `class="formflow-label"`)
	assert.Equal(t, "stack", surf.FormClass())
}
