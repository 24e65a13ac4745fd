package qti_test

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itemforge/imlkit/internal/iml"
	"github.com/itemforge/imlkit/internal/qti"
)

func TestItemXMLChoice(t *testing.T) {
	item := qti.Convert(&iml.Item{
		ID:       "q1",
		Kind:     iml.KindChoice,
		Question: []iml.Block{paragraph("2+2=?")},
		Detail: iml.ChoiceDetail{Choices: []iml.ChoiceOption{
			{ID: "a", Content: []iml.Block{paragraph("3")}},
			{ID: "b", Content: []iml.Block{paragraph("4")}, Correct: true},
		}},
	}, qti.Options{})

	out := qti.ItemXML(item)
	assert.Contains(t, out, `<assessmentItem identifier="q1"`)
	assert.Contains(t, out, `cardinality="single" baseType="identifier"`)
	assert.Contains(t, out, "<value>b</value>")
	assert.Contains(t, out, `<choiceInteraction responseIdentifier="RESPONSE"`)
	assert.Contains(t, out, `<simpleChoice identifier="b">`)
}

func TestItemXMLGapMatch(t *testing.T) {
	item := qti.Convert(&iml.Item{
		ID:     "f1",
		Kind:   iml.KindFillBlank,
		Detail: iml.FillBlankDetail{Blanks: []iml.BlankDecl{{ID: "b1", Answers: []string{"Seoul"}}}},
	}, qti.Options{})

	out := qti.ItemXML(item)
	assert.Contains(t, out, "<gapMatchInteraction")
	assert.Contains(t, out, `<gapText identifier="Seoul"`)
	assert.Contains(t, out, `<gap identifier="b1"/>`)
}

func TestItemXMLMapping(t *testing.T) {
	up := 2.0
	item := qti.AssessmentItem{
		Identifier: "m1",
		ResponseDecls: []qti.ResponseDecl{{
			Identifier:  "RESPONSE",
			Cardinality: qti.CardinalityMultiple,
			BaseType:    qti.BaseTypeIdentifier,
			Mapping: &qti.Mapping{
				UpperBound: &up,
				Entries:    []qti.MapEntry{{Key: "A", Value: 1}},
			},
		}},
	}
	out := qti.ItemXML(item)
	assert.Contains(t, out, `upperBound="2"`)
	assert.Contains(t, out, `<mapEntry mapKey="A" mappedValue="1"/>`)
}

func TestManifestXML(t *testing.T) {
	items := []qti.AssessmentItem{{Identifier: "q1"}, {Identifier: "q2"}}
	b, err := qti.ManifestXML(items)
	require.NoError(t, err)

	var mf struct {
		Resources []struct {
			Identifier string `xml:"identifier,attr"`
			Href       string `xml:"href,attr"`
		} `xml:"resources>resource"`
	}
	require.NoError(t, xml.Unmarshal(b, &mf))
	require.Len(t, mf.Resources, 2)
	assert.Equal(t, "q1.xml", mf.Resources[0].Href)
}
