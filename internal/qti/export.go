package qti

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// ItemXML renders an AssessmentItem as QTI 2.1-shaped XML. Interaction
// bodies reuse the already-serialized HTML; this is an interchange surface,
// not a validated QTI implementation.
func ItemXML(item AssessmentItem) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<assessmentItem identifier="%s" title="%s" xmlns="http://www.imsglobal.org/xsd/imsqti_v2p1">`+"\n",
		attrEscape(item.Identifier), attrEscape(item.Title))

	for _, rd := range item.ResponseDecls {
		fmt.Fprintf(&b, `  <responseDeclaration identifier="%s" cardinality="%s" baseType="%s">`+"\n",
			attrEscape(rd.Identifier), rd.Cardinality, rd.BaseType)
		if len(rd.Correct) > 0 {
			b.WriteString("    <correctResponse>\n")
			for _, v := range rd.Correct {
				fmt.Fprintf(&b, "      <value>%s</value>\n", xmlEscape(v))
			}
			b.WriteString("    </correctResponse>\n")
		}
		if rd.Mapping != nil {
			b.WriteString(mappingXML(rd.Mapping))
		}
		b.WriteString("  </responseDeclaration>\n")
	}
	for _, od := range item.OutcomeDecls {
		fmt.Fprintf(&b, `  <outcomeDeclaration identifier="%s" cardinality="single" baseType="%s">`, attrEscape(od.Identifier), od.BaseType)
		fmt.Fprintf(&b, `<defaultValue><value>%g</value></defaultValue></outcomeDeclaration>`+"\n", od.Default)
	}

	b.WriteString("  <itemBody>\n")
	b.WriteString("    " + item.BodyHTML + "\n")
	for _, in := range item.Interactions {
		b.WriteString(interactionXML(in))
	}
	b.WriteString("  </itemBody>\n")

	for _, fb := range item.Feedback {
		fmt.Fprintf(&b, `  <modalFeedback outcomeIdentifier="%s" identifier="%s" showHide="%s">%s</modalFeedback>`+"\n",
			attrEscape(fb.OutcomeID), attrEscape(fb.Identifier), fb.ShowHide, fb.ContentHTML)
	}
	b.WriteString("</assessmentItem>\n")
	return b.String()
}

func mappingXML(m *Mapping) string {
	var b strings.Builder
	b.WriteString("    <mapping")
	fmt.Fprintf(&b, ` defaultValue="%g"`, m.DefaultValue)
	if m.LowerBound != nil {
		fmt.Fprintf(&b, ` lowerBound="%g"`, *m.LowerBound)
	}
	if m.UpperBound != nil {
		fmt.Fprintf(&b, ` upperBound="%g"`, *m.UpperBound)
	}
	b.WriteString(">\n")
	for _, e := range m.Entries {
		fmt.Fprintf(&b, `      <mapEntry mapKey="%s" mappedValue="%g"`, attrEscape(e.Key), e.Value)
		if e.CaseSensitive != nil {
			fmt.Fprintf(&b, ` caseSensitive="%t"`, *e.CaseSensitive)
		}
		b.WriteString("/>\n")
	}
	b.WriteString("    </mapping>\n")
	return b.String()
}

func interactionXML(in Interaction) string {
	var b strings.Builder
	switch in.Type {
	case InteractionChoice:
		fmt.Fprintf(&b, `    <choiceInteraction responseIdentifier="%s" shuffle="%t" maxChoices="%d">`+"\n",
			attrEscape(in.ResponseID), in.Shuffle, in.MaxChoices)
		for _, c := range in.Choices {
			fmt.Fprintf(&b, `      <simpleChoice identifier="%s">%s</simpleChoice>`+"\n",
				attrEscape(c.Identifier), c.ContentHTML)
		}
		b.WriteString("    </choiceInteraction>\n")
	case InteractionTextEntry:
		fmt.Fprintf(&b, `    <textEntryInteraction responseIdentifier="%s"`, attrEscape(in.ResponseID))
		if in.ExpectedLength > 0 {
			fmt.Fprintf(&b, ` expectedLength="%d"`, in.ExpectedLength)
		}
		b.WriteString("/>\n")
	case InteractionExtendedText:
		fmt.Fprintf(&b, `    <extendedTextInteraction responseIdentifier="%s" expectedLines="%d"/>`+"\n",
			attrEscape(in.ResponseID), in.ExpectedLines)
	case InteractionMatch:
		fmt.Fprintf(&b, `    <matchInteraction responseIdentifier="%s" maxAssociations="%d">`+"\n",
			attrEscape(in.ResponseID), len(in.SourceSet))
		b.WriteString(matchSetXML(in.SourceSet))
		b.WriteString(matchSetXML(in.TargetSet))
		b.WriteString("    </matchInteraction>\n")
	case InteractionGapMatch:
		fmt.Fprintf(&b, `    <gapMatchInteraction responseIdentifier="%s">`+"\n", attrEscape(in.ResponseID))
		for _, g := range in.GapChoices {
			fmt.Fprintf(&b, `      <gapText identifier="%s" matchMax="1">%s</gapText>`+"\n",
				attrEscape(g.Identifier), xmlEscape(g.ContentHTML))
		}
		for _, gap := range in.Gaps {
			fmt.Fprintf(&b, `      <gap identifier="%s"/>`+"\n", attrEscape(gap))
		}
		b.WriteString("    </gapMatchInteraction>\n")
	}
	return b.String()
}

func matchSetXML(set []Option) string {
	var b strings.Builder
	b.WriteString("      <simpleMatchSet>\n")
	for _, o := range set {
		fmt.Fprintf(&b, `        <simpleAssociableChoice identifier="%s" matchMax="1">%s</simpleAssociableChoice>`+"\n",
			attrEscape(o.Identifier), o.ContentHTML)
	}
	b.WriteString("      </simpleMatchSet>\n")
	return b.String()
}

func xmlEscape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// --- IMS content-package manifest (export only) ---

type imsManifest struct {
	XMLName   xml.Name      `xml:"manifest"`
	Resources []imsResource `xml:"resources>resource"`
}

type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}

type imsFile struct {
	Href string `xml:"href,attr"`
}

// ManifestXML builds an imsmanifest.xml body listing one resource per item,
// each pointing at "<identifier>.xml".
func ManifestXML(items []AssessmentItem) ([]byte, error) {
	mf := imsManifest{Resources: make([]imsResource, 0, len(items))}
	for _, it := range items {
		name := it.Identifier + ".xml"
		mf.Resources = append(mf.Resources, imsResource{
			Identifier: it.Identifier,
			Type:       "imsqti_item_xmlv2p1",
			Href:       name,
			Files:      []imsFile{{Href: name}},
		})
	}
	body, err := xml.MarshalIndent(mf, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
