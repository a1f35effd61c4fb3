package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// The feed wraps a vehicle record in a single root element with this name;
// its children are exposed as the top-level fields.
const rootElement = "voertuig"

// xmlDeclPrefix is the sniff used to decide that a request body is an XML
// document rather than form data.
var xmlDeclPrefix = []byte("<?xml")

// LooksLikeXML reports whether a request body starts with an XML declaration.
func LooksLikeXML(body []byte) bool {
	return bytes.HasPrefix(body, xmlDeclPrefix)
}

// Decode parses an XML vehicle record into a generic mapping.
//
// Conversion rules:
//   - an element with child elements becomes a mapping from child tag name to
//     converted child; a tag name occurring more than once among its siblings
//     makes every occurrence a list entry, a single occurrence stays scalar
//   - element attributes are folded into the element's mapping under
//     "attributes", then lifted one level up unless a same-named key is
//     already defined there (the attribute is dropped on collision)
//   - a sole top-level "voertuig" element is unwrapped
func Decode(raw []byte) (map[string]interface{}, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("malformed feed XML: %w", err)
	}
	m := childrenToMap(doc)
	if m == nil {
		return nil, fmt.Errorf("malformed feed XML: no root element")
	}
	liftAttributes(m)
	if inner, ok := m[rootElement].(map[string]interface{}); ok && len(m) == 1 {
		m = inner
	}
	return m, nil
}

// Normalize converts an XML vehicle record into the same flat field set the
// form-encoded path produces: scalar fields as strings, the nested image list
// reduced to a comma-joined URL string under "afbeeldingen".
func Normalize(raw []byte) (map[string]string, error) {
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	flattenImages(m)
	fields := make(map[string]string)
	for k, v := range m {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}
	return fields, nil
}

// childrenToMap converts the element children of n into a mapping. Returns
// nil when n has no element children.
func childrenToMap(n *xmlquery.Node) map[string]interface{} {
	counts := make(map[string]int)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			counts[c.Data]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	m := make(map[string]interface{})
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		v := nodeValue(c)
		if counts[c.Data] > 1 {
			list, _ := m[c.Data].([]interface{})
			m[c.Data] = append(list, v)
		} else {
			m[c.Data] = v
		}
	}
	return m
}

// nodeValue converts one element. Elements without child elements become
// their trimmed text; attributes force a mapping so they have somewhere to
// live.
func nodeValue(n *xmlquery.Node) interface{} {
	m := childrenToMap(n)
	if m == nil {
		if len(n.Attr) == 0 {
			return strings.TrimSpace(n.InnerText())
		}
		m = make(map[string]interface{})
		if text := strings.TrimSpace(n.InnerText()); text != "" {
			m["value"] = text
		}
	}
	if len(n.Attr) > 0 {
		m["attributes"] = attrMap(n)
	}
	return m
}

func attrMap(n *xmlquery.Node) map[string]interface{} {
	attrs := make(map[string]interface{}, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Name.Local] = a.Value
	}
	return attrs
}

// liftAttributes moves each "attributes" entry into its containing mapping,
// skipping attribute names already taken by a child element. Recurses through
// nested mappings and lists.
func liftAttributes(m map[string]interface{}) {
	for _, v := range m {
		switch child := v.(type) {
		case map[string]interface{}:
			liftAttributes(child)
		case []interface{}:
			for _, entry := range child {
				if em, ok := entry.(map[string]interface{}); ok {
					liftAttributes(em)
				}
			}
		}
	}
	attrs, ok := m["attributes"].(map[string]interface{})
	if !ok {
		return
	}
	delete(m, "attributes")
	for k, v := range attrs {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
}

// flattenImages reduces the nested afbeeldingen/afbeelding XML shape to the
// comma-separated URL string the form-encoded path receives natively. A
// single image is not wrapped in a list by the conversion rules, so both
// shapes are handled here.
func flattenImages(m map[string]interface{}) {
	wrapper, ok := m["afbeeldingen"].(map[string]interface{})
	if !ok {
		return
	}
	var entries []interface{}
	switch e := wrapper["afbeelding"].(type) {
	case []interface{}:
		entries = e
	case map[string]interface{}:
		entries = []interface{}{e}
	default:
		return
	}
	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		em, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if u, ok := em["url"].(string); ok && u != "" {
			urls = append(urls, u)
		}
	}
	m["afbeeldingen"] = strings.Join(urls, ",")
}
